package dto

import "github.com/jhoicas/umbrella-client/internal/domain/entity"

// ProductResponse producto con su stock actual (amount).
type ProductResponse struct {
	ID          ID              `json:"id"`
	BranchID    ID              `json:"branch_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	URLCover    string          `json:"url_cover,omitempty"`
	Amount      int             `json:"amount"`
	Branch      *BranchResponse `json:"branch,omitempty"`
}

// Entity convierte al modelo de dominio.
func (p *ProductResponse) Entity() *entity.Product {
	if p == nil {
		return nil
	}
	return &entity.Product{
		ID:          int64(p.ID),
		BranchID:    int64(p.BranchID),
		Name:        p.Name,
		Description: p.Description,
		URLCover:    p.URLCover,
		Amount:      p.Amount,
		Branch:      p.Branch.Entity(),
	}
}

// NewProductResponse construye la respuesta desde el dominio.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          ID(p.ID),
		BranchID:    ID(p.BranchID),
		Name:        p.Name,
		Description: p.Description,
		URLCover:    p.URLCover,
		Amount:      p.Amount,
		Branch:      NewBranchResponse(p.Branch),
	}
}

// BranchUser usuario responsable de la filial (solo el nombre viaja en las respuestas).
type BranchUser struct {
	Name string `json:"name"`
}

// BranchResponse filial con dirección.
type BranchResponse struct {
	ID           ID          `json:"id"`
	UserID       ID          `json:"user_id,omitempty"`
	Document     string      `json:"document,omitempty"`
	Street       string      `json:"street,omitempty"`
	Number       string      `json:"number,omitempty"`
	Complement   *string     `json:"complement"`
	Neighborhood string      `json:"neighborhood,omitempty"`
	City         string      `json:"city,omitempty"`
	State        string      `json:"state,omitempty"`
	ZipCode      string      `json:"zip_code,omitempty"`
	User         *BranchUser `json:"user,omitempty"`
}

// Entity convierte al modelo de dominio.
func (b *BranchResponse) Entity() *entity.Branch {
	if b == nil {
		return nil
	}
	out := &entity.Branch{
		ID:           int64(b.ID),
		UserID:       int64(b.UserID),
		Document:     b.Document,
		Street:       b.Street,
		Number:       b.Number,
		Neighborhood: b.Neighborhood,
		City:         b.City,
		State:        b.State,
		ZipCode:      b.ZipCode,
	}
	if b.Complement != nil {
		out.Complement = *b.Complement
	}
	if b.User != nil {
		out.Name = b.User.Name
	}
	return out
}

// NewBranchResponse construye la respuesta desde el dominio.
func NewBranchResponse(b *entity.Branch) *BranchResponse {
	if b == nil {
		return nil
	}
	out := &BranchResponse{
		ID:           ID(b.ID),
		UserID:       ID(b.UserID),
		Document:     b.Document,
		Street:       b.Street,
		Number:       b.Number,
		Neighborhood: b.Neighborhood,
		City:         b.City,
		State:        b.State,
		ZipCode:      b.ZipCode,
		User:         &BranchUser{Name: b.Name},
	}
	if b.Complement != "" {
		c := b.Complement
		out.Complement = &c
	}
	return out
}
