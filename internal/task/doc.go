// Package task runs the periodic background passes over pending reviews.
// The reminder sweep flags reviews that are about to fall due and hands them
// to a Notifier; the expiry sweep retires reviews left pending too long. Both
// work one row per transaction, re-check the row under its lock and may be
// re-run at any time without changing already processed rows.
package task
