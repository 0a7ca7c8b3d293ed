package repository

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// BranchRepository puerto de persistencia de filiales.
type BranchRepository interface {
	Create(ctx context.Context, b *entity.Branch) error
	GetByID(ctx context.Context, id int64) (*entity.Branch, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.Branch, error)
	List(ctx context.Context) ([]*entity.Branch, error)
}
