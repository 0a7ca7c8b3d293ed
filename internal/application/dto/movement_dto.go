package dto

import (
	"time"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// CreateMovementRequest body para POST /movements.
type CreateMovementRequest struct {
	OriginBranchID      int64  `json:"origin_branch_id"`
	DestinationBranchID int64  `json:"destination_branch_id"`
	ProductID           int64  `json:"product_id"`
	Quantity            int    `json:"quantity"`
	Observations        string `json:"observations"`
}

// MovementResponse movimiento tal como lo devuelve el backend.
// Branch es la filial de destino; la de origen viaja dentro de Product.Branch.
type MovementResponse struct {
	ID                  ID               `json:"id"`
	OriginBranchID      ID               `json:"origin_branch_id,omitempty"`
	DestinationBranchID ID               `json:"destination_branch_id,omitempty"`
	ProductID           ID               `json:"product_id,omitempty"`
	Quantity            int              `json:"quantity"`
	Observations        string           `json:"observations,omitempty"`
	Status              string           `json:"status"`
	DriverID            *ID              `json:"driver_id,omitempty"`
	ProofFile           string           `json:"proof_file,omitempty"`
	CreatedAt           time.Time        `json:"created_at,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at,omitempty"`
	Product             *ProductResponse `json:"product,omitempty"`
	Branch              *BranchResponse  `json:"branch,omitempty"`
}

// Entity convierte al modelo de dominio. Si faltan los ids planos se toman de los objetos anidados.
func (m *MovementResponse) Entity() *entity.Movement {
	if m == nil {
		return nil
	}
	out := &entity.Movement{
		ID:                  int64(m.ID),
		OriginBranchID:      int64(m.OriginBranchID),
		DestinationBranchID: int64(m.DestinationBranchID),
		ProductID:           int64(m.ProductID),
		Quantity:            m.Quantity,
		Observations:        m.Observations,
		Status:              entity.MovementStatus(m.Status),
		ProofFile:           m.ProofFile,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Product:             m.Product.Entity(),
		DestinationBranch:   m.Branch.Entity(),
	}
	if m.DriverID != nil {
		out.DriverID = int64(*m.DriverID)
	}
	if out.Product != nil {
		if out.ProductID == 0 {
			out.ProductID = out.Product.ID
		}
		out.OriginBranch = out.Product.Branch
		if out.OriginBranchID == 0 && out.OriginBranch != nil {
			out.OriginBranchID = out.OriginBranch.ID
		}
	}
	if out.DestinationBranchID == 0 && out.DestinationBranch != nil {
		out.DestinationBranchID = out.DestinationBranch.ID
	}
	return out
}

// NewMovementResponse construye la respuesta desde el dominio.
func NewMovementResponse(m *entity.Movement) *MovementResponse {
	if m == nil {
		return nil
	}
	out := &MovementResponse{
		ID:                  ID(m.ID),
		OriginBranchID:      ID(m.OriginBranchID),
		DestinationBranchID: ID(m.DestinationBranchID),
		ProductID:           ID(m.ProductID),
		Quantity:            m.Quantity,
		Observations:        m.Observations,
		Status:              string(m.Status),
		ProofFile:           m.ProofFile,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Product:             NewProductResponse(m.Product),
		Branch:              NewBranchResponse(m.DestinationBranch),
	}
	if m.DriverID != 0 {
		id := ID(m.DriverID)
		out.DriverID = &id
	}
	return out
}
