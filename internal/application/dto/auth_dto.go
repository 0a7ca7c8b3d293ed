package dto

// LoginRequest body para POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse respuesta de POST /login. ID es puntero para distinguir ausencia de cero.
type LoginResponse struct {
	ID      *ID    `json:"id,omitempty"`
	Token   string `json:"token"`
	Profile string `json:"profile"`
	Name    string `json:"name"`
}
