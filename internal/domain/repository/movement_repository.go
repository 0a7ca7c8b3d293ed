package repository

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// MovementRepository puerto de persistencia de movimientos del sandbox.
// GetByID devuelve (nil, nil) si no existe.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	Update(ctx context.Context, m *entity.Movement) error
	ListByStatus(ctx context.Context, status entity.MovementStatus) ([]*entity.Movement, error)
	ListByBranch(ctx context.Context, branchID int64) ([]*entity.Movement, error)
	// CurrentByDriver movimiento IN_PROGRESS del motorista, o (nil, nil).
	CurrentByDriver(ctx context.Context, driverID int64) (*entity.Movement, error)
}
