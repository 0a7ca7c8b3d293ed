package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	// ErrSessionEnded indica que la llamada no tiene resultado porque la sesión expiró
	// y ya se ejecutó el cierre de sesión global. No es un fallo de la llamada.
	ErrSessionEnded = errors.New("sesión finalizada")
	// ErrLoginContract la respuesta de /login no trae id, token o profile.
	ErrLoginContract = errors.New("Resposta da API não contém todos os dados necessários (id, token, perfil).")
)

// ValidationError entrada del llamador que viola una precondición. Se detecta antes de cualquier llamada de red.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError la cantidad pedida supera el stock disponible al momento de decidir.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Quantidade insuficiente. Disponível: %d, Solicitado: %d.", e.Available, e.Requested)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
