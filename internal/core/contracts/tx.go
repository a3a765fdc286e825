package contracts

import "context"

// TxManager runs fn inside a single store transaction carried through the
// context. Repositories pick the transaction up transparently.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
