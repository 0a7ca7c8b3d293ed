package dispatch

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que reserva de stock y cambio de estado del movimiento se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
