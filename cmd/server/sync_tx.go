package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "sanctionwatch/pkg/domain-errors"
	txcontext "sanctionwatch/pkg/platform/tx"
)

const defaultSyncTxTimeout = 2 * time.Minute

// syncPostgresTx runs the delete+insert replacement of a source's rows
// as one transaction, carried to the stores via context.
type syncPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newSyncPostgresTx(db *sql.DB) *syncPostgresTx {
	return &syncPostgresTx{db: db}
}

func (t *syncPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSyncTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit()
}
