// Package domain contains the core business entities of the recitation
// scheduler: recitation records, review records and the read-only user and
// text lookups they refer to. It is independent of storage and transport.
package domain
