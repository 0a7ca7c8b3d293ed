package http

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// proofField nombre del campo multipart con la foto del comprobante.
const proofField = "file"

// MovementHandler endpoints del ciclo de vida de movimientos.
type MovementHandler struct {
	uc        *dispatch.DispatchUseCase
	uploadDir string
}

// NewMovementHandler construye el handler. Los comprobantes se guardan en uploadDir.
func NewMovementHandler(uc *dispatch.DispatchUseCase, uploadDir string) *MovementHandler {
	return &MovementHandler{uc: uc, uploadDir: uploadDir}
}

// Create POST /movements (BRANCH): reserva stock en la filial del usuario.
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: dto.CodeValidation, Message: "Corpo inválido"})
	}
	m, err := h.uc.CreateMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(m))
}

// ListForDriver GET /movements (DRIVER).
func (h *MovementHandler) ListForDriver(c *fiber.Ctx) error {
	list, err := h.uc.ListForDriver(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movementResponses(list))
}

// Current GET /movements/current (DRIVER). Sin movimiento en curso -> 404.
func (h *MovementHandler) Current(c *fiber.Ctx) error {
	m, err := h.uc.Current(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// ListForBranch GET /movements/branches/me (BRANCH).
func (h *MovementHandler) ListForBranch(c *fiber.Ctx) error {
	list, err := h.uc.ListForBranch(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movementResponses(list))
}

// Start PATCH /movements/:id/start (DRIVER).
func (h *MovementHandler) Start(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.uc.StartMovement(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

// End PATCH /movements/:id/end (DRIVER): multipart con el campo "file".
func (h *MovementHandler) End(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	fh, err := c.FormFile(proofField)
	if err != nil || fh.Size == 0 {
		return writeError(c, domain.NewValidationError(proofField, "É necessário enviar uma foto do comprovante."))
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return fmt.Errorf("crear directorio de comprobantes: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("movement-%d-%s%s", id, uuid.NewString(), ext)
	if err := c.SaveFile(fh, filepath.Join(h.uploadDir, name)); err != nil {
		return fmt.Errorf("guardar comprobante: %w", err)
	}
	m, err := h.uc.FinishMovement(c.UserContext(), GetUserID(c), id, name)
	if err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(m))
}

func movementResponses(list []*entity.Movement) []*dto.MovementResponse {
	out := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return out
}

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "Identificador inválido")
	}
	return id, nil
}
