package movement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// Mensajes de validación mostrados al usuario.
const (
	MsgRequiredFields  = "Todos os campos são obrigatórios."
	MsgSameBranch      = "A filial de origem e destino não podem ser a mesma."
	MsgInvalidQuantity = "A quantidade deve ser maior que zero."
	MsgInvalidID       = "Movimentação inválida."
	MsgProofRequired   = "É necessário enviar uma foto do comprovante."
)

const (
	proofField       = "file"
	proofFileName    = "comprovante.jpg"
	proofContentType = "image/jpeg"
)

// CreateInput datos para crear un movimiento. Un id en 0 se considera no informado.
type CreateInput struct {
	OriginBranchID      int64
	DestinationBranchID int64
	ProductID           int64
	Quantity            int
	Observations        string
}

// ProofImage foto del comprobante de entrega. Cancelled indica que el usuario cerró la cámara.
type ProofImage struct {
	Data        []byte
	FileName    string
	ContentType string
	Cancelled   bool
}

// WorkflowEngine ciclo de vida de un movimiento: PENDING -> IN_PROGRESS -> FINISHED.
// Las validaciones locales corren antes de cualquier llamada de red; el backend es la
// autoridad sobre el estado y sus errores se devuelven sin reinterpretar.
type WorkflowEngine struct {
	api   ports.Requester
	stock ports.StockLedger
	log   *logger.Logger
}

// NewWorkflowEngine construye el motor.
func NewWorkflowEngine(api ports.Requester, stock ports.StockLedger, log *logger.Logger) *WorkflowEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &WorkflowEngine{api: api, stock: stock, log: log.Named("movement")}
}

// CreateMovement valida la entrada, relee el stock del producto y crea el movimiento en PENDING.
func (e *WorkflowEngine) CreateMovement(ctx context.Context, in CreateInput) (*entity.Movement, error) {
	if in.OriginBranchID == 0 || in.DestinationBranchID == 0 || in.ProductID == 0 {
		return nil, domain.NewValidationError("", MsgRequiredFields)
	}
	if in.OriginBranchID == in.DestinationBranchID {
		return nil, domain.NewValidationError("destination_branch_id", MsgSameBranch)
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", MsgInvalidQuantity)
	}

	// Siempre lectura fresca: el stock pudo cambiar desde que se mostró la pantalla.
	available, err := e.stock.AvailableStock(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if in.Quantity > available {
		return nil, &domain.InsufficientStockError{ProductID: in.ProductID, Available: available, Requested: in.Quantity}
	}

	req := dto.CreateMovementRequest{
		OriginBranchID:      in.OriginBranchID,
		DestinationBranchID: in.DestinationBranchID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		Observations:        in.Observations,
	}
	var resp dto.MovementResponse
	if err := e.api.Post(ctx, "/movements", req, &resp); err != nil {
		return nil, err
	}

	m := resp.Entity()
	if m.OriginBranchID == 0 {
		m.OriginBranchID = in.OriginBranchID
	}
	if m.DestinationBranchID == 0 {
		m.DestinationBranchID = in.DestinationBranchID
	}
	if m.ProductID == 0 {
		m.ProductID = in.ProductID
	}
	if m.Quantity == 0 {
		m.Quantity = in.Quantity
	}
	if m.Observations == "" {
		m.Observations = in.Observations
	}
	if m.Status == "" {
		m.Status = entity.MovementPending
	}
	e.log.Info().Int64("movement_id", m.ID).Int64("product_id", m.ProductID).Int("quantity", m.Quantity).Msg("movimiento creado")
	return m, nil
}

// StartMovement pide al backend pasar el movimiento a IN_PROGRESS y asignarlo al conductor
// autenticado. Conflictos (ya iniciado, conductor ocupado) llegan tal cual desde el backend.
func (e *WorkflowEngine) StartMovement(ctx context.Context, movementID int64) error {
	if movementID <= 0 {
		return domain.NewValidationError("movement_id", MsgInvalidID)
	}
	if err := e.api.Patch(ctx, fmt.Sprintf("/movements/%d/start", movementID), nil, nil); err != nil {
		return err
	}
	e.log.Info().Int64("movement_id", movementID).Msg("movimiento iniciado")
	return nil
}

// StartKnown como StartMovement, pero rechaza localmente un movimiento cuyo estado conocido
// no admite el inicio, sin llamar al backend.
func (e *WorkflowEngine) StartKnown(ctx context.Context, m *entity.Movement) error {
	if m == nil {
		return domain.NewValidationError("movement_id", MsgInvalidID)
	}
	if m.Status != "" && !m.Status.CanTransitionTo(entity.MovementInProgress) {
		return &entity.TransitionError{MovementID: m.ID, From: m.Status, To: entity.MovementInProgress}
	}
	return e.StartMovement(ctx, m.ID)
}

// FinishMovement envía el comprobante y pide al backend cerrar el movimiento (FINISHED).
// Sin imagen no hay llamada de red.
func (e *WorkflowEngine) FinishMovement(ctx context.Context, movementID int64, proof ProofImage) error {
	if movementID <= 0 {
		return domain.NewValidationError("movement_id", MsgInvalidID)
	}
	if proof.Cancelled || len(proof.Data) == 0 {
		return domain.NewValidationError("file", MsgProofRequired)
	}
	att := ports.Attachment{
		FieldName:   proofField,
		FileName:    proof.FileName,
		ContentType: proof.ContentType,
		Data:        proof.Data,
	}
	if att.FileName == "" {
		att.FileName = proofFileName
	}
	if att.ContentType == "" {
		att.ContentType = proofContentType
	}
	if err := e.api.PatchMultipart(ctx, fmt.Sprintf("/movements/%d/end", movementID), att, nil); err != nil {
		return err
	}
	e.log.Info().Int64("movement_id", movementID).Int("proof_bytes", len(proof.Data)).Msg("movimiento finalizado")
	return nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

// ListActive GET /movements: movimientos visibles para el conductor (pendientes y en curso).
func (e *WorkflowEngine) ListActive(ctx context.Context) ([]*entity.Movement, error) {
	return e.list(ctx, "/movements")
}

// Current GET /movements/current: movimiento en curso del conductor. Sin movimiento -> nil, nil.
func (e *WorkflowEngine) Current(ctx context.Context) (*entity.Movement, error) {
	var resp *dto.MovementResponse
	if err := e.api.Get(ctx, "/movements/current", &resp); err != nil {
		if apierror.StatusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if resp == nil || resp.ID == 0 {
		return nil, nil
	}
	return resp.Entity(), nil
}

// ListBranchMovements movimientos de la filial autenticada ordenados por id.
// status vacío no filtra; un status desconocido es error de validación.
func (e *WorkflowEngine) ListBranchMovements(ctx context.Context, status entity.MovementStatus) ([]*entity.Movement, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("status desconhecido: %s", status))
	}
	all, err := e.list(ctx, "/movements/branches/me")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if status == "" {
		return all, nil
	}
	out := all[:0]
	for _, m := range all {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

func (e *WorkflowEngine) list(ctx context.Context, path string) ([]*entity.Movement, error) {
	var resp []dto.MovementResponse
	if err := e.api.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	out := make([]*entity.Movement, 0, len(resp))
	for i := range resp {
		out = append(out, resp[i].Entity())
	}
	return out, nil
}

// IsSessionEnded indica que la operación se abandonó porque la sesión expiró;
// la UI no debe mostrar un error adicional.
func IsSessionEnded(err error) bool {
	return errors.Is(err, domain.ErrSessionEnded)
}
