package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepository)(nil)

// BranchRepository filiales en memoria.
type BranchRepository struct{ s *Store }

func (r *BranchRepository) Create(_ context.Context, b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.next("branches")
	r.s.branches[b.ID] = *b
	return nil
}

func (r *BranchRepository) GetByID(_ context.Context, id int64) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BranchRepository) GetByUserID(_ context.Context, userID int64) (*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.branches {
		if b.UserID == userID {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (r *BranchRepository) List(_ context.Context) ([]*entity.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Branch, 0, len(r.s.branches))
	for _, b := range r.s.branches {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
