package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/umbrella-client/internal/domain"
)

// MovementStatus estado del ciclo de vida de un movimiento.
type MovementStatus string

// Estados: PENDING -> IN_PROGRESS -> FINISHED (terminal). Sin saltos ni retrocesos.
const (
	MovementPending    MovementStatus = "PENDING"
	MovementInProgress MovementStatus = "IN_PROGRESS"
	MovementFinished   MovementStatus = "FINISHED"
)

// Valid indica si el estado es conocido.
func (s MovementStatus) Valid() bool {
	switch s {
	case MovementPending, MovementInProgress, MovementFinished:
		return true
	}
	return false
}

// Next devuelve el único estado alcanzable desde s. ok es false para FINISHED o estados desconocidos.
func (s MovementStatus) Next() (MovementStatus, bool) {
	switch s {
	case MovementPending:
		return MovementInProgress, true
	case MovementInProgress:
		return MovementFinished, true
	}
	return "", false
}

// CanTransitionTo indica si to es el siguiente paso de s.
func (s MovementStatus) CanTransitionTo(to MovementStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

// Terminal indica si no hay transiciones posibles.
func (s MovementStatus) Terminal() bool {
	return s == MovementFinished
}

// Label etiqueta pt-BR mostrada en las listas.
func (s MovementStatus) Label() string {
	switch s {
	case MovementPending:
		return "Aguardando Coleta"
	case MovementInProgress:
		return "Em Andamento"
	case MovementFinished:
		return "Finalizada"
	default:
		return string(s)
	}
}

// Movement traslado de una cantidad de producto entre dos filiales.
type Movement struct {
	ID                  int64
	OriginBranchID      int64
	DestinationBranchID int64
	ProductID           int64
	Quantity            int
	Observations        string
	Status              MovementStatus
	DriverID            int64  // 0 mientras está PENDING
	ProofFile           string // nombre del comprobante de entrega (FINISHED)
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Datos de presentación que el backend incluye en las respuestas (opcionales).
	Product           *Product
	OriginBranch      *Branch
	DestinationBranch *Branch
}

// TransitionError transición rechazada por la máquina de estados.
type TransitionError struct {
	MovementID int64
	From       MovementStatus
	To         MovementStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("movimiento %d: transición inválida %s -> %s", e.MovementID, e.From, e.To)
}

// Unwrap permite errors.Is(err, domain.ErrInvalidTransition).
func (e *TransitionError) Unwrap() error { return domain.ErrInvalidTransition }

// Transition avanza el movimiento a to si es el siguiente estado; si no, no modifica nada.
func (m *Movement) Transition(to MovementStatus, at time.Time) error {
	if !m.Status.CanTransitionTo(to) {
		return &TransitionError{MovementID: m.ID, From: m.Status, To: to}
	}
	m.Status = to
	m.UpdatedAt = at
	return nil
}
