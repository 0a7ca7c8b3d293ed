package entity

import "time"

// User cuenta del sistema (ADMIN, BRANCH o DRIVER).
type User struct {
	ID           int64
	Name         string
	Email        string
	Document     string
	Profile      Role
	Status       bool   // activo / inactivo (PATCH /user/{id}/status alterna)
	PasswordHash string // bcrypt hash; solo en el sandbox
	URLCover     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
