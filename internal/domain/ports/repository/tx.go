package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX marks the non-transactional path explicitly at call sites.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `qx`.
//
// Repository methods accept `qx Tx` so implementations can detect a tx and
// run SELECT ... FOR UPDATE / tx-bound Exec as needed. Repositories MUST
// gracefully accept nil qx (non-transactional path). The concrete type of
// qx is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, qx Tx) error) error
}
