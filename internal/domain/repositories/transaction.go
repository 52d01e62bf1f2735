package repositories

import "context"

// TxFn is a function that runs within a transaction. Repository calls made
// with the ctx it receives take part in the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes fn within a transaction, rolling back when it returns an error.
	// Nested calls join the outer transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}
