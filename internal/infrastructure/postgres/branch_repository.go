package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

const branchColumns = `id, user_id, name, document, street, number, COALESCE(complement, ''), neighborhood, city, state, zip_code`

func scanBranch(row pgx.Row) (*entity.Branch, error) {
	var b entity.Branch
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Document, &b.Street, &b.Number, &b.Complement, &b.Neighborhood, &b.City, &b.State, &b.ZipCode); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste la filial y asigna el ID generado.
func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	query := `
		INSERT INTO branches (user_id, name, document, street, number, complement, neighborhood, city, state, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		b.UserID, b.Name, b.Document, b.Street, b.Number, nullString(b.Complement), b.Neighborhood, b.City, b.State, b.ZipCode,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// GetByID obtiene una filial por ID.
func (r *BranchRepo) GetByID(ctx context.Context, id int64) (*entity.Branch, error) {
	return r.getOne(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id)
}

// GetByUserID filial administrada por el usuario.
func (r *BranchRepo) GetByUserID(ctx context.Context, userID int64) (*entity.Branch, error) {
	return r.getOne(ctx, `SELECT `+branchColumns+` FROM branches WHERE user_id = $1`, userID)
}

func (r *BranchRepo) getOne(ctx context.Context, query string, arg int64) (*entity.Branch, error) {
	b, err := scanBranch(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return b, nil
}

// List todas las filiales ordenadas por id.
func (r *BranchRepo) List(ctx context.Context) ([]*entity.Branch, error) {
	rows, err := r.q.Query(ctx, `SELECT `+branchColumns+` FROM branches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()
	var out []*entity.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
