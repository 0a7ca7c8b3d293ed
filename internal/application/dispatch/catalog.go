package dispatch

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

// CatalogUseCase lecturas de productos y filiales del backend.
type CatalogUseCase struct {
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(productRepo repository.ProductRepository, branchRepo repository.BranchRepository) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo, branchRepo: branchRepo}
}

// ListProducts todos los productos con su filial.
func (uc *CatalogUseCase) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	list, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return uc.withBranch(ctx, list)
}

// ProductsOfUser productos de la filial del usuario BRANCH.
func (uc *CatalogUseCase) ProductsOfUser(ctx context.Context, userID int64) ([]*entity.Product, error) {
	b, err := uc.BranchOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := uc.productRepo.ListByBranch(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Branch = b
	}
	return list, nil
}

// ListBranches todas las filiales.
func (uc *CatalogUseCase) ListBranches(ctx context.Context) ([]*entity.Branch, error) {
	return uc.branchRepo.List(ctx)
}

// BranchOfUser filial administrada por el usuario; ErrBranchRequired si no tiene.
func (uc *CatalogUseCase) BranchOfUser(ctx context.Context, userID int64) (*entity.Branch, error) {
	b, err := uc.branchRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBranchRequired
	}
	return b, nil
}

func (uc *CatalogUseCase) withBranch(ctx context.Context, list []*entity.Product) ([]*entity.Product, error) {
	cache := map[int64]*entity.Branch{}
	for _, p := range list {
		b, ok := cache[p.BranchID]
		if !ok {
			var err error
			if b, err = uc.branchRepo.GetByID(ctx, p.BranchID); err != nil {
				return nil, err
			}
			cache[p.BranchID] = b
		}
		p.Branch = b
	}
	return list, nil
}
