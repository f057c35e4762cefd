// Package recitation schedules recitations of classical texts.
//
// The Service starts a recitation with its first review, applies completed
// reviews through the srs algorithm and creates the next review until the
// recitation is mastered. Every mutation runs in one store.UnitOfWork
// transaction that locks the review and its recitation; events are emitted
// only after the transaction commits.
package recitation
