package store

import "context"

// Repos groups the stores of the recitation aggregate. Stores obtained
// inside UnitOfWork.WithinTx share one transaction.
type Repos struct {
	Recitations RecitationStore
	Reviews     ReviewStore
}

// UnitOfWork runs aggregate mutations atomically.
type UnitOfWork interface {
	// Repos returns stores bound to no transaction, for reads.
	Repos() Repos

	// WithinTx runs fn in a transaction. The transaction is committed if fn
	// returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
