package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepository)(nil)

// MovementRepository movimientos en memoria. Se guardan sin las relaciones (Product, Branch).
type MovementRepository struct {
	s *Store
	j *journal
}

func (r *MovementRepository) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.next("movements")
	r.j.keepMovement(r.s, m.ID)
	r.s.movements[m.ID] = bare(m)
	return nil
}

func (r *MovementRepository) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MovementRepository) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepository) Update(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.j.keepMovement(r.s, m.ID)
	r.s.movements[m.ID] = bare(m)
	return nil
}

func (r *MovementRepository) ListByStatus(_ context.Context, status entity.MovementStatus) ([]*entity.Movement, error) {
	return r.filter(func(m entity.Movement) bool { return m.Status == status }), nil
}

func (r *MovementRepository) ListByBranch(_ context.Context, branchID int64) ([]*entity.Movement, error) {
	return r.filter(func(m entity.Movement) bool {
		return m.OriginBranchID == branchID || m.DestinationBranchID == branchID
	}), nil
}

func (r *MovementRepository) CurrentByDriver(_ context.Context, driverID int64) (*entity.Movement, error) {
	list := r.filter(func(m entity.Movement) bool {
		return m.DriverID == driverID && m.Status == entity.MovementInProgress
	})
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *MovementRepository) filter(keep func(entity.Movement) bool) []*entity.Movement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.movements {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func bare(m *entity.Movement) entity.Movement {
	out := *m
	out.Product = nil
	out.OriginBranch = nil
	out.DestinationBranch = nil
	return out
}
