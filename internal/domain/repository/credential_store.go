package repository

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// KeyValueStore almacenamiento durable clave/valor del dispositivo (get/set/remove).
// Get devuelve "" sin error si la clave no existe.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// CredentialStore dueño exclusivo de la Session persistida.
// Escriben solo el login (Save) y el cierre de sesión explícito o por expiración (Clear);
// sin transacciones: gana la última escritura.
type CredentialStore interface {
	Load(ctx context.Context) (*entity.Session, error)
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, s *entity.Session) error
	Clear(ctx context.Context) error
}
