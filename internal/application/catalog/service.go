package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// Verificar en tiempo de compilación que Service implementa StockLedger.
var _ ports.StockLedger = (*Service)(nil)

// Service vista de solo lectura de productos, stock y filiales del backend.
type Service struct {
	api ports.Requester
}

// NewService construye el servicio de catálogo.
func NewService(api ports.Requester) *Service {
	return &Service{api: api}
}

// ListProducts GET /products.
func (s *Service) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return s.products(ctx, "/products")
}

// MyProducts GET /products/me: productos de la filial autenticada.
func (s *Service) MyProducts(ctx context.Context) ([]*entity.Product, error) {
	return s.products(ctx, "/products/me")
}

// AvailableStock relee /products y devuelve el amount de productID (0 si no aparece).
// Los errores del transporte se devuelven sin cambios.
func (s *Service) AvailableStock(ctx context.Context, productID int64) (int, error) {
	list, err := s.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range list {
		if p.ID == productID {
			if p.Amount < 0 {
				return 0, nil
			}
			return p.Amount, nil
		}
	}
	return 0, nil
}

// ListBranches GET /branches.
func (s *Service) ListBranches(ctx context.Context) ([]*entity.Branch, error) {
	var resp []dto.BranchResponse
	if err := s.api.Get(ctx, "/branches", &resp); err != nil {
		return nil, err
	}
	out := make([]*entity.Branch, 0, len(resp))
	for i := range resp {
		out = append(out, resp[i].Entity())
	}
	return out, nil
}

// MyBranch GET /branches/me: filial del usuario BRANCH autenticado.
func (s *Service) MyBranch(ctx context.Context) (*entity.Branch, error) {
	var resp dto.BranchResponse
	if err := s.api.Get(ctx, "/branches/me", &resp); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, fmt.Errorf("respuesta de /branches/me sin id")
	}
	return resp.Entity(), nil
}

// DestinationBranches filiales candidatas a destino: todas menos la de origen.
func (s *Service) DestinationBranches(ctx context.Context, originBranchID int64) ([]*entity.Branch, error) {
	all, err := s.ListBranches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Branch, 0, len(all))
	for _, b := range all {
		if b.ID != originBranchID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Service) products(ctx context.Context, path string) ([]*entity.Product, error) {
	var resp []dto.ProductResponse
	if err := s.api.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	out := make([]*entity.Product, 0, len(resp))
	for i := range resp {
		out = append(out, resp[i].Entity())
	}
	return out, nil
}
