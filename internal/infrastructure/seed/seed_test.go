package seed_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/umbrella-client/internal/application/auth"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/memory"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/seed"
)

func deps(store *memory.Store) seed.Deps {
	return seed.Deps{
		Auth:     auth.NewAuthUseCase(store.Users(), store.Branches(), auth.JWTConfig{Secret: "s", ExpMinutes: 5, Issuer: "t"}),
		Users:    store.Users(),
		Branches: store.Branches(),
		Products: store.Products(),
	}
}

func TestRun_Idempotente(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	first, err := seed.Run(ctx, deps(store), seed.DefaultProducts)
	require.NoError(t, err)
	assert.Len(t, first.Users, len(seed.Accounts))
	assert.Len(t, first.Branches, 2)
	assert.Equal(t, len(seed.DefaultProducts), first.Products)

	second, err := seed.Run(ctx, deps(store), seed.DefaultProducts)
	require.NoError(t, err)
	assert.Equal(t, first.Users, second.Users)
	assert.Zero(t, second.Products, "no debe duplicar productos")

	list, err := store.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(seed.DefaultProducts))
}

func TestRun_FilialDesconocida(t *testing.T) {
	_, err := seed.Run(context.Background(), deps(memory.NewStore()), []seed.ProductRow{{BranchEmail: "sul@umbrella.com", Name: "X", Amount: 1}})
	assert.Error(t, err)
}

func TestReadProductsCSV_UTF8(t *testing.T) {
	in := "filial;nome;descricao;quantidade\n" +
		"CENTRO@umbrella.com; Sombrinha ;Estampada;12\n" +
		";;;\n"
	rows, err := seed.ReadProductsCSV(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, seed.ProductRow{BranchEmail: "centro@umbrella.com", Name: "Sombrinha", Description: "Estampada", Amount: 12}, rows[0])
}

func TestReadProductsCSV_Latin1(t *testing.T) {
	utf8 := "filial;nome;descricao;quantidade\nnorte@umbrella.com;Capa de chuva;Proteção térmica;3\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	rows, err := seed.ReadProductsCSV(bytes.NewReader([]byte(encoded)), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Proteção térmica", rows[0].Description)
}

func TestReadProductsCSV_CantidadInvalida(t *testing.T) {
	_, err := seed.ReadProductsCSV(strings.NewReader("a;b;c;d\nx@y.z;P;D;muitos\n"), false)
	assert.ErrorContains(t, err, "línea 2")
}
