package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions.
// Guarded mutations read the current owner, decide and write inside one TxFn
// so ownership cannot change between the check and the write.
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing if it returns nil
	ExecTx(ctx context.Context, fn TxFn) error
}
