package repository

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// ProductRepository puerto de persistencia de productos y su stock (Amount) por filial.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto para descontar o sumar stock.
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	FindByBranchAndName(ctx context.Context, branchID int64, name string) (*entity.Product, error)
	UpdateAmount(ctx context.Context, id int64, amount int) error
	List(ctx context.Context) ([]*entity.Product, error)
	ListByBranch(ctx context.Context, branchID int64) ([]*entity.Product, error)
}
