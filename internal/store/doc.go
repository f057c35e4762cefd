// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduler's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Recitations and their reviews are one aggregate. Every mutation of that
// aggregate goes through UnitOfWork.WithinTx and locks the rows it changes
// with the GetForUpdate methods, so concurrent requests and background
// sweeps are serialized per recitation.
package store
