package dto

import "github.com/jhoicas/umbrella-client/internal/domain/entity"

// RegisterUserRequest body para POST /user. Los campos de dirección usan los nombres del backend.
type RegisterUserRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	Email        string `json:"email"`
	URLCover     string `json:"url_cover,omitempty"`
	Street       string `json:"rua,omitempty"`
	City         string `json:"cidade,omitempty"`
	Neighborhood string `json:"bairro,omitempty"`
	Number       string `json:"numero,omitempty"`
	Complement   string `json:"complemento,omitempty"`
	State        string `json:"estado,omitempty"`
	ZipCode      string `json:"cep,omitempty"`
	Password     string `json:"password"`
	Profile      string `json:"profile"`
}

// UserResponse usuario devuelto por /user.
type UserResponse struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"`
	Profile  string `json:"profile"`
	Status   bool   `json:"status"`
	URLCover string `json:"url_cover,omitempty"`
}

// Entity convierte al modelo de dominio.
func (u *UserResponse) Entity() *entity.User {
	if u == nil {
		return nil
	}
	role, _ := entity.ParseRole(u.Profile)
	return &entity.User{
		ID:       int64(u.ID),
		Name:     u.Name,
		Email:    u.Email,
		Document: u.Document,
		Profile:  role,
		Status:   u.Status,
		URLCover: u.URLCover,
	}
}

// NewUserResponse construye la respuesta desde el dominio (sin hash de password).
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:       ID(u.ID),
		Name:     u.Name,
		Email:    u.Email,
		Document: u.Document,
		Profile:  string(u.Profile),
		Status:   u.Status,
		URLCover: u.URLCover,
	}
}
