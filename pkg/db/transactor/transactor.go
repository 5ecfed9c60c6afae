package transactor

import "context"

// Transactor runs a unit of work within a single database transaction.
// The function receives a context carrying the transaction, repositories
// built on the matching executor pick it up transparently.
type Transactor interface {
	WithinTransaction(context.Context, func(context.Context) error) error
}
