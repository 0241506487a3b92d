package repository

import "context"

// Transactor runs fn inside one storage transaction. Repositories called with
// the ctx handed to fn take part in that transaction. Returning an error from
// fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
