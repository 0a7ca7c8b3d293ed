package entity

// Session credenciales persistidas del usuario autenticado.
// Pertenece exclusivamente al CredentialStore; el transporte solo la lee o la borra.
type Session struct {
	Token       string
	UserID      int64
	Role        Role
	DisplayName string
	Email       string
}

// Authenticated indica si la sesión tiene lo mínimo para restaurarse (token, id y rol).
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.UserID != 0 && s.Role != ""
}
