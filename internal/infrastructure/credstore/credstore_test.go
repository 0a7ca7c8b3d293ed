package credstore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/credstore"
)

func testSession() *entity.Session {
	return &entity.Session{
		Token:       "tok-123",
		UserID:      7,
		Role:        entity.RoleBranch,
		DisplayName: "Filial Centro",
		Email:       "centro@umbrella.test",
	}
}

func TestCredentials_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	creds := credstore.NewCredentials(credstore.NewMemoryStore())

	require.NoError(t, creds.Save(ctx, testSession()))

	got, err := creds.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
	tok, err := creds.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	require.NoError(t, creds.Clear(ctx))
	got, err = creds.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Authenticated())
	assert.Equal(t, &entity.Session{}, got, "todos los campos se borran juntos")
}

func TestFileStore_PersisteEntreInstancias(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	fs, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, credstore.NewCredentials(fs).Save(ctx, testSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	got, err := credstore.NewCredentials(reopened).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
}

func TestFileStore_Remove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, fs.Set(ctx, credstore.KeyToken, "abc"))
	require.NoError(t, fs.Set(ctx, "theme", "dark"))
	require.NoError(t, fs.Remove(ctx, credstore.KeyToken))

	tok, err := fs.Get(ctx, credstore.KeyToken)
	require.NoError(t, err)
	assert.Empty(t, tok)

	reopened, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	theme, _ := reopened.Get(ctx, "theme")
	assert.Equal(t, "dark", theme, "las claves no borradas sobreviven")
	tok, _ = reopened.Get(ctx, credstore.KeyToken)
	assert.Empty(t, tok)
}

// Sin transacciones: con escrituras concurrentes gana la última, y el store nunca
// queda con una mezcla ilegible de ambas.
func TestCredentials_UltimaEscrituraGana(t *testing.T) {
	ctx := context.Background()
	kv := credstore.NewMemoryStore()
	creds := credstore.NewCredentials(kv)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = creds.Save(ctx, testSession()) }()
	go func() { defer wg.Done(); _ = creds.Clear(ctx) }()
	wg.Wait()

	_, err := creds.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, creds.Clear(ctx))
	got, err := creds.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Authenticated(), "el último Clear deja la sesión vacía")
}
