package engine

import (
	"context"

	"github.com/mcdexio/dsc-engine/common/logging"
)

// uow tracks the compensations for external token calls made inside one
// atomic operation. Ledger state is rolled back by the store transaction;
// token movements already executed are reversed here, newest first, so a
// failed operation leaves no effect anywhere.
type uow struct {
	undos []func() error
}

func (u *uow) add(undo func() error) {
	u.undos = append(u.undos, undo)
}

func (u *uow) rollback(logger logging.Logger) {
	for i := len(u.undos) - 1; i >= 0; i-- {
		if err := u.undos[i](); err != nil {
			logger.Error("compensation failed: %s", err)
		}
	}
}

// transact runs fn as one all-or-nothing unit of work.
func (e *Engine) transact(ctx context.Context, fn func(tx Store, u *uow) error) error {
	u := &uow{}
	err := e.store.Transact(ctx, func(tx Store) error {
		return fn(tx, u)
	})
	if err != nil {
		u.rollback(e.logger)
		return err
	}
	return nil
}
