package support

import (
	"context"

	"spacehub/internal/app/uow"
)

// UnitFromContext pulls the ambient unit of work, failing loudly when a
// handler runs outside the transaction middleware.
func UnitFromContext(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}

// BeginReadOnlyUnit opens a short-lived read-only unit for query handlers
// that run outside the command pipeline.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, func(), error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = unit.Rollback(ctx) }
	return unit, cleanup, nil
}
