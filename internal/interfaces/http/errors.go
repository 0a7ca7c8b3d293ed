package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// writeError traduce errores de dominio a status HTTP y cuerpo {error, message}.
// message es el texto que el cliente muestra al usuario.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	return c.Status(status).JSON(dto.ErrorResponse{Error: code, Message: msg})
}

func classify(err error) (int, string, string) {
	var verr *domain.ValidationError
	var stock *domain.InsufficientStockError
	var transition *entity.TransitionError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.CodeValidation, verr.Message
	case errors.As(err, &stock):
		return fiber.StatusConflict, dto.CodeInsufficientStock, stock.Error()
	case errors.As(err, &transition):
		return fiber.StatusConflict, dto.CodeConflict, fmt.Sprintf("Movimentação %d está %s", transition.MovementID, strings.ToLower(transition.From.Label()))
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.CodeConflict, "Email já cadastrado"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.CodeConflict, detail(err, domain.ErrConflict, "Conflito com o estado atual")
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.CodeNotFound, "Recurso não encontrado"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.CodeForbidden, detail(err, domain.ErrForbidden, "Acesso negado")
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.CodeBadCredentials, "Email ou senha inválidos"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.CodeValidation, "Dados inválidos"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, dto.CodeInternal, fe.Message
	}
	return fiber.StatusInternalServerError, dto.CodeInternal, "Erro interno do servidor"
}

// detail texto agregado a un sentinel con fmt.Errorf("%w: texto"), o def si no hay.
func detail(err, sentinel error, def string) string {
	prefix := sentinel.Error() + ": "
	if msg := err.Error(); strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return def
}

// ErrorHandler manejador de errores de la app Fiber.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
