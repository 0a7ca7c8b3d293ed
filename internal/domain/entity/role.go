package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role perfil del usuario autenticado.
type Role string

// Roles válidos (valores del campo profile del backend).
const (
	RoleAdmin  Role = "ADMIN"
	RoleBranch Role = "BRANCH"
	RoleDriver Role = "DRIVER"
)

var upper = cases.Upper(language.Und)

// ParseRole normaliza el profile recibido del backend ("driver", " Branch ") a un Role.
// ok es false si el valor no corresponde a ningún rol conocido; el Role devuelto conserva
// el valor normalizado para poder registrarlo.
func ParseRole(profile string) (Role, bool) {
	r := Role(upper.String(strings.TrimSpace(profile)))
	return r, r.Valid()
}

// Valid indica si el rol es uno de ADMIN, BRANCH o DRIVER.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBranch, RoleDriver:
		return true
	}
	return false
}

// Label etiqueta para mostrar al usuario.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleBranch:
		return "Filial"
	case RoleDriver:
		return "Motorista"
	default:
		return string(r)
	}
}
