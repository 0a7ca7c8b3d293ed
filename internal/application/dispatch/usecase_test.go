package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type world struct {
	uc      *dispatch.DispatchUseCase
	store   *memory.Store
	origin  *entity.Branch
	dest    *entity.Branch
	product *entity.Product
	branchU int64 // usuario dueño de origin
	driverA int64
	driverB int64
}

// newWorld: filial 1 (usuario 10) con 5 unidades del producto, filial 2 (usuario 11), motoristas 20 y 21.
func newWorld(t *testing.T, amount int) *world {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	w := &world{store: s, branchU: 10, driverA: 20, driverB: 21}

	w.origin = &entity.Branch{UserID: 10, Name: "Centro"}
	require.NoError(t, s.Branches().Create(ctx, w.origin))
	w.dest = &entity.Branch{UserID: 11, Name: "Norte"}
	require.NoError(t, s.Branches().Create(ctx, w.dest))
	w.product = &entity.Product{BranchID: w.origin.ID, Name: "Guarda-chuva", Amount: amount}
	require.NoError(t, s.Products().Create(ctx, w.product))

	w.uc = dispatch.NewDispatchUseCase(memory.NewTxRunner(s), s.Movements(), s.Products(), s.Branches(), nil)
	return w
}

func (w *world) create(t *testing.T, qty int) *entity.Movement {
	t.Helper()
	m, err := w.uc.CreateMovement(context.Background(), w.branchU, dto.CreateMovementRequest{
		DestinationBranchID: w.dest.ID, ProductID: w.product.ID, Quantity: qty,
	})
	require.NoError(t, err)
	return m
}

func (w *world) amount(t *testing.T, id int64) int {
	t.Helper()
	p, err := w.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Amount
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_ReservaStock(t *testing.T) {
	w := newWorld(t, 10)
	m := w.create(t, 4)

	assert.Equal(t, entity.MovementPending, m.Status)
	assert.Equal(t, w.origin.ID, m.OriginBranchID)
	require.NotNil(t, m.Product)
	assert.Equal(t, "Guarda-chuva", m.Product.Name)
	require.NotNil(t, m.DestinationBranch)
	assert.Equal(t, "Norte", m.DestinationBranch.Name)
	assert.Equal(t, 6, w.amount(t, w.product.ID))
}

func TestCreateMovement_StockInsuficienteNoModifica(t *testing.T) {
	w := newWorld(t, 3)
	_, err := w.uc.CreateMovement(context.Background(), w.branchU, dto.CreateMovementRequest{
		DestinationBranchID: w.dest.ID, ProductID: w.product.ID, Quantity: 5,
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 3, w.amount(t, w.product.ID))

	list, _ := w.store.Movements().ListByStatus(context.Background(), entity.MovementPending)
	assert.Empty(t, list, "la transacción se revierte")
}

func TestCreateMovement_Reglas(t *testing.T) {
	w := newWorld(t, 10)
	ctx := context.Background()

	_, err := w.uc.CreateMovement(ctx, 99, dto.CreateMovementRequest{DestinationBranchID: w.dest.ID, ProductID: w.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, dispatch.ErrBranchRequired)

	_, err = w.uc.CreateMovement(ctx, w.branchU, dto.CreateMovementRequest{DestinationBranchID: w.origin.ID, ProductID: w.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = w.uc.CreateMovement(ctx, w.branchU, dto.CreateMovementRequest{OriginBranchID: w.dest.ID, DestinationBranchID: w.dest.ID, ProductID: w.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.uc.CreateMovement(ctx, 11, dto.CreateMovementRequest{DestinationBranchID: w.origin.ID, ProductID: w.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden, "el producto no es de la filial del usuario")

	_, err = w.uc.CreateMovement(ctx, w.branchU, dto.CreateMovementRequest{DestinationBranchID: 999, ProductID: w.product.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartMovement_CicloYConflictos(t *testing.T) {
	w := newWorld(t, 10)
	ctx := context.Background()
	m1 := w.create(t, 2)
	m2 := w.create(t, 2)

	started, err := w.uc.StartMovement(ctx, w.driverA, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementInProgress, started.Status)
	assert.Equal(t, w.driverA, started.DriverID)

	_, err = w.uc.StartMovement(ctx, w.driverB, m1.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "ya está en curso")

	_, err = w.uc.StartMovement(ctx, w.driverA, m2.ID)
	assert.ErrorIs(t, err, dispatch.ErrDriverBusy)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = w.uc.StartMovement(ctx, w.driverA, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cur, err := w.uc.Current(ctx, w.driverA)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, cur.ID)

	_, err = w.uc.Current(ctx, w.driverB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartMovement_ConcurrenteUnSoloGanador(t *testing.T) {
	w := newWorld(t, 10)
	m := w.create(t, 1)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.uc.StartMovement(context.Background(), int64(100+i), m.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	}
	assert.Equal(t, 1, ok)
}

func TestFinishMovement_AcreditaDestino(t *testing.T) {
	w := newWorld(t, 10)
	ctx := context.Background()
	m := w.create(t, 4)
	_, err := w.uc.StartMovement(ctx, w.driverA, m.ID)
	require.NoError(t, err)

	_, err = w.uc.FinishMovement(ctx, w.driverB, m.ID, "proof.jpg")
	assert.ErrorIs(t, err, dispatch.ErrNotYourRoute)

	done, err := w.uc.FinishMovement(ctx, w.driverA, m.ID, "proof.jpg")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementFinished, done.Status)
	assert.Equal(t, "proof.jpg", done.ProofFile)

	dst, err := w.store.Products().FindByBranchAndName(ctx, w.dest.ID, "guarda-chuva")
	require.NoError(t, err)
	require.NotNil(t, dst)
	assert.Equal(t, 4, dst.Amount)

	// Segundo envío al mismo destino suma sobre el producto existente.
	m2 := w.create(t, 1)
	_, err = w.uc.StartMovement(ctx, w.driverA, m2.ID)
	require.NoError(t, err)
	_, err = w.uc.FinishMovement(ctx, w.driverA, m2.ID, "proof2.jpg")
	require.NoError(t, err)
	assert.Equal(t, 5, w.amount(t, dst.ID))
	assert.Equal(t, 5, w.amount(t, w.product.ID))

	_, err = w.uc.FinishMovement(ctx, w.driverA, m2.ID, "proof3.jpg")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestFinishMovement_SinComprobante(t *testing.T) {
	w := newWorld(t, 10)
	_, err := w.uc.FinishMovement(context.Background(), w.driverA, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFinishMovement_PendienteNoSeCierra(t *testing.T) {
	w := newWorld(t, 10)
	m := w.create(t, 1)
	_, err := w.uc.FinishMovement(context.Background(), w.driverA, m.ID, "proof.jpg")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListados(t *testing.T) {
	w := newWorld(t, 10)
	ctx := context.Background()
	m1 := w.create(t, 1)
	w.create(t, 1)
	_, err := w.uc.StartMovement(ctx, w.driverA, m1.ID)
	require.NoError(t, err)

	forA, err := w.uc.ListForDriver(ctx, w.driverA)
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	forB, err := w.uc.ListForDriver(ctx, w.driverB)
	require.NoError(t, err)
	assert.Len(t, forB, 1, "no ve el movimiento en curso de otro motorista")

	forDest, err := w.uc.ListForBranch(ctx, 11)
	require.NoError(t, err)
	assert.Len(t, forDest, 2)
}
