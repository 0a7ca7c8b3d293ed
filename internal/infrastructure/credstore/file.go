package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ repository.KeyValueStore = (*FileStore)(nil)

// FileStore KeyValueStore durable en un archivo JSON escrito con Viper.
// El mutex serializa escrituras dentro del proceso; entre procesos gana la última escritura.
type FileStore struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// NewFileStore abre (o prepara) el archivo de sesión en path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, v: newViper(path)}
	if _, err := os.Stat(path); err == nil {
		if err := s.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("leer %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return s, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetConfigPermissions(0o600)
	return v
}

// Get devuelve el valor de key o "" si no existe. Viper no distingue mayúsculas en las claves.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(key), nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	return s.write()
}

// Remove reconstruye el store sin las claves indicadas (Viper no soporta Unset).
func (s *FileStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := s.v.AllSettings()
	for _, k := range keys {
		delete(settings, strings.ToLower(k))
	}
	nv := newViper(s.path)
	for k, val := range settings {
		nv.Set(k, val)
	}
	s.v = nv
	return s.write()
}

func (s *FileStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("crear directorio de sesión: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("escribir sesión: %w", err)
	}
	return nil
}
