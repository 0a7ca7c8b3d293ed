package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// Conflictos que el backend reporta con 409 y un mensaje para el usuario.
var (
	ErrDriverBusy     = fmt.Errorf("%w: Você já possui uma movimentação em andamento", domain.ErrConflict)
	ErrNotYourRoute   = fmt.Errorf("%w: movimentação atribuída a outro motorista", domain.ErrForbidden)
	ErrBranchRequired = fmt.Errorf("%w: usuário sem filial associada", domain.ErrForbidden)
)

// DispatchUseCase reglas del backend sobre movimientos entre filiales: reserva de stock al crear,
// asignación al motorista al iniciar y acreditación en destino al finalizar.
// Cada cambio corre en una transacción con bloqueo de fila (SELECT FOR UPDATE).
type DispatchUseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewDispatchUseCase construye el caso de uso.
func NewDispatchUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	log *logger.Logger,
) *DispatchUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DispatchUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		log:         log.Named("dispatch"),
		now:         time.Now,
	}
}

// CreateMovement crea un movimiento PENDING desde la filial del usuario y reserva el stock en origen.
func (uc *DispatchUseCase) CreateMovement(ctx context.Context, userID int64, in dto.CreateMovementRequest) (*entity.Movement, error) {
	origin, err := uc.branchOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.ProductID == 0 || in.DestinationBranchID == 0 {
		return nil, domain.NewValidationError("", "Todos os campos são obrigatórios.")
	}
	if in.OriginBranchID != 0 && in.OriginBranchID != origin.ID {
		return nil, domain.ErrForbidden
	}
	if in.DestinationBranchID == origin.ID {
		return nil, domain.NewValidationError("destination_branch_id", "A filial de origem e destino não podem ser a mesma.")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "A quantidade deve ser maior que zero.")
	}
	dest, err := uc.branchRepo.GetByID(ctx, in.DestinationBranchID)
	if err != nil {
		return nil, err
	}
	if dest == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	m := &entity.Movement{
		OriginBranchID:      origin.ID,
		DestinationBranchID: dest.ID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		Observations:        in.Observations,
		Status:              entity.MovementPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		p, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.BranchID != origin.ID {
			return domain.ErrForbidden
		}
		if p.Amount < in.Quantity {
			return &domain.InsufficientStockError{ProductID: p.ID, Available: p.Amount, Requested: in.Quantity}
		}
		if err := productRepo.UpdateAmount(ctx, p.ID, p.Amount-in.Quantity); err != nil {
			return err
		}
		return movRepo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("movement_id", m.ID).Int64("origin", m.OriginBranchID).Int64("destination", m.DestinationBranchID).Int("quantity", m.Quantity).Msg("movimiento creado")
	return uc.hydrate(ctx, m)
}

// StartMovement asigna el movimiento PENDING al motorista y lo pasa a IN_PROGRESS.
// Un motorista tiene a lo sumo un movimiento en curso.
func (uc *DispatchUseCase) StartMovement(ctx context.Context, driverID, movementID int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, _ repository.ProductRepository) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		current, err := movRepo.CurrentByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if current != nil && current.ID != m.ID {
			return ErrDriverBusy
		}
		if err := m.Transition(entity.MovementInProgress, uc.now()); err != nil {
			return err
		}
		m.DriverID = driverID
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("movement_id", movementID).Int64("driver_id", driverID).Msg("movimiento iniciado")
	return uc.hydrate(ctx, out)
}

// FinishMovement cierra el movimiento en curso del motorista con el comprobante y acredita la
// cantidad en el producto homónimo de la filial destino (lo crea si no existe).
func (uc *DispatchUseCase) FinishMovement(ctx context.Context, driverID, movementID int64, proofFile string) (*entity.Movement, error) {
	if proofFile == "" {
		return nil, domain.NewValidationError("file", "É necessário enviar uma foto do comprovante.")
	}
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if m.Status == entity.MovementInProgress && m.DriverID != driverID {
			return ErrNotYourRoute
		}
		now := uc.now()
		if err := m.Transition(entity.MovementFinished, now); err != nil {
			return err
		}
		m.ProofFile = proofFile
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}

		src, err := productRepo.GetByID(ctx, m.ProductID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrNotFound
		}
		dst, err := productRepo.FindByBranchAndName(ctx, m.DestinationBranchID, src.Name)
		if err != nil {
			return err
		}
		if dst == nil {
			dst = &entity.Product{
				BranchID:    m.DestinationBranchID,
				Name:        src.Name,
				Description: src.Description,
				URLCover:    src.URLCover,
				Amount:      m.Quantity,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := productRepo.Create(ctx, dst); err != nil {
				return err
			}
		} else {
			locked, err := productRepo.GetForUpdate(ctx, dst.ID)
			if err != nil {
				return err
			}
			if err := productRepo.UpdateAmount(ctx, locked.ID, locked.Amount+m.Quantity); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("movement_id", movementID).Int64("driver_id", driverID).Str("proof", proofFile).Msg("movimiento finalizado")
	return uc.hydrate(ctx, out)
}

// ListForDriver movimientos PENDING disponibles más el que el motorista tiene en curso.
func (uc *DispatchUseCase) ListForDriver(ctx context.Context, driverID int64) ([]*entity.Movement, error) {
	pending, err := uc.movRepo.ListByStatus(ctx, entity.MovementPending)
	if err != nil {
		return nil, err
	}
	current, err := uc.movRepo.CurrentByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	list := pending
	if current != nil {
		list = append(list, current)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return uc.hydrateAll(ctx, list)
}

// Current movimiento IN_PROGRESS del motorista; ErrNotFound si no tiene.
func (uc *DispatchUseCase) Current(ctx context.Context, driverID int64) (*entity.Movement, error) {
	m, err := uc.movRepo.CurrentByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return uc.hydrate(ctx, m)
}

// ListForBranch movimientos donde la filial del usuario es origen o destino.
func (uc *DispatchUseCase) ListForBranch(ctx context.Context, userID int64) ([]*entity.Movement, error) {
	b, err := uc.branchOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := uc.movRepo.ListByBranch(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return uc.hydrateAll(ctx, list)
}

func (uc *DispatchUseCase) branchOf(ctx context.Context, userID int64) (*entity.Branch, error) {
	b, err := uc.branchRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBranchRequired
	}
	return b, nil
}

// hydrate adjunta producto (con filial de origen) y filial de destino, como los devuelve la API.
func (uc *DispatchUseCase) hydrate(ctx context.Context, m *entity.Movement) (*entity.Movement, error) {
	p, err := uc.productRepo.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if p.Branch, err = uc.branchRepo.GetByID(ctx, m.OriginBranchID); err != nil {
			return nil, err
		}
		m.Product = p
		m.OriginBranch = p.Branch
	}
	if m.DestinationBranch, err = uc.branchRepo.GetByID(ctx, m.DestinationBranchID); err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *DispatchUseCase) hydrateAll(ctx context.Context, list []*entity.Movement) ([]*entity.Movement, error) {
	for _, m := range list {
		if _, err := uc.hydrate(ctx, m); err != nil {
			return nil, err
		}
	}
	return list, nil
}
