package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository productos en memoria. GetForUpdate no bloquea: el TxRunner ya serializa.
type ProductRepository struct {
	s *Store
	j *journal
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.next("products")
	r.j.keepProduct(r.s, p.ID)
	stored := *p
	stored.Branch = nil
	r.s.products[p.ID] = stored
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) FindByBranchAndName(_ context.Context, branchID int64, name string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.BranchID == branchID && sameName(p.Name, name) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) UpdateAmount(_ context.Context, id int64, amount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.j.keepProduct(r.s, id)
	p.Amount = amount
	r.s.products[id] = p
	return nil
}

func (r *ProductRepository) List(_ context.Context) ([]*entity.Product, error) {
	return r.filter(func(entity.Product) bool { return true }), nil
}

func (r *ProductRepository) ListByBranch(_ context.Context, branchID int64) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return p.BranchID == branchID }), nil
}

func (r *ProductRepository) filter(keep func(entity.Product) bool) []*entity.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
