package credstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.CredentialStore = (*Credentials)(nil)

// Claves persistidas. Se borran siempre juntas.
const (
	KeyToken   = "@token"
	KeyUserID  = "userId"
	KeyProfile = "userProfile"
	KeyName    = "userName"
	KeyEmail   = "userEmail"
)

var allKeys = []string{KeyToken, KeyUserID, KeyProfile, KeyName, KeyEmail}

// Credentials CredentialStore sobre un KeyValueStore.
type Credentials struct {
	kv repository.KeyValueStore
}

// NewCredentials construye el store de sesión sobre kv.
func NewCredentials(kv repository.KeyValueStore) *Credentials {
	return &Credentials{kv: kv}
}

// Token devuelve el token actual o "" si no hay sesión.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	return c.kv.Get(ctx, KeyToken)
}

// Load lee la sesión persistida. Nunca devuelve nil sin error; usar Session.Authenticated.
func (c *Credentials) Load(ctx context.Context) (*entity.Session, error) {
	values := make(map[string]string, len(allKeys))
	for _, k := range allKeys {
		v, err := c.kv.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", k, err)
		}
		values[k] = v
	}
	s := &entity.Session{
		Token:       values[KeyToken],
		DisplayName: values[KeyName],
		Email:       values[KeyEmail],
	}
	if id, err := strconv.ParseInt(values[KeyUserID], 10, 64); err == nil {
		s.UserID = id
	}
	if values[KeyProfile] != "" {
		s.Role, _ = entity.ParseRole(values[KeyProfile])
	}
	return s, nil
}

// Save persiste todos los campos de la sesión.
func (c *Credentials) Save(ctx context.Context, s *entity.Session) error {
	pairs := [][2]string{
		{KeyUserID, strconv.FormatInt(s.UserID, 10)},
		{KeyToken, s.Token},
		{KeyProfile, string(s.Role)},
		{KeyName, s.DisplayName},
		{KeyEmail, s.Email},
	}
	for _, p := range pairs {
		if err := c.kv.Set(ctx, p[0], p[1]); err != nil {
			return fmt.Errorf("guardar %s: %w", p[0], err)
		}
	}
	return nil
}

// Clear borra todos los campos de la sesión.
func (c *Credentials) Clear(ctx context.Context) error {
	return c.kv.Remove(ctx, allKeys...)
}
