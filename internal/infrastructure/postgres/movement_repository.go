package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, origin_branch_id, destination_branch_id, product_id, quantity, observations, status,
	COALESCE(driver_id, 0), COALESCE(proof_file, ''), created_at, updated_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var status string
	if err := row.Scan(&m.ID, &m.OriginBranchID, &m.DestinationBranchID, &m.ProductID, &m.Quantity, &m.Observations, &status,
		&m.DriverID, &m.ProofFile, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = entity.MovementStatus(status)
	return &m, nil
}

// Create persiste el movimiento y asigna el ID generado.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (origin_branch_id, destination_branch_id, product_id, quantity, observations, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.OriginBranchID, m.DestinationBranchID, m.ProductID, m.Quantity, m.Observations, string(m.Status), m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea la fila (SELECT FOR UPDATE).
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

// CurrentByDriver movimiento IN_PROGRESS del motorista.
func (r *MovementRepo) CurrentByDriver(ctx context.Context, driverID int64) (*entity.Movement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM movements WHERE driver_id = $1 AND status = 'IN_PROGRESS'`, driverID)
}

func (r *MovementRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Update guarda estado, motorista y comprobante.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE movements SET status = $2, driver_id = $3, proof_file = $4, observations = $5, updated_at = $6
		WHERE id = $1`,
		m.ID, string(m.Status), nullInt64(m.DriverID), nullString(m.ProofFile), m.Observations, m.UpdatedAt,
	)
	if err != nil {
		// Índice parcial: un motorista con dos movimientos en curso.
		if isUniqueViolation(err) && constraintOf(err) == "movements_driver_in_progress_key" {
			return dispatch.ErrDriverBusy
		}
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus movimientos en un estado.
func (r *MovementRepo) ListByStatus(ctx context.Context, status entity.MovementStatus) ([]*entity.Movement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM movements WHERE status = $1 ORDER BY id`, string(status))
}

// ListByBranch movimientos donde la filial es origen o destino.
func (r *MovementRepo) ListByBranch(ctx context.Context, branchID int64) ([]*entity.Movement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM movements
		WHERE origin_branch_id = $1 OR destination_branch_id = $1 ORDER BY id`, branchID)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
