package movement_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umbrella-client/internal/application/movement"
	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type call struct {
	Method string
	Path   string
	Body   interface{}
	File   *ports.Attachment
}

// fakeAPI responde por "METHOD path" con un valor JSON o un error.
type fakeAPI struct {
	responses map[string]interface{}
	errs      map[string]error
	calls     []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]interface{}{}, errs: map[string]error{}}
}

func (f *fakeAPI) do(method, path string, body interface{}, file *ports.Attachment, out interface{}) error {
	f.calls = append(f.calls, call{Method: method, Path: path, Body: body, File: file})
	key := method + " " + path
	if err, ok := f.errs[key]; ok {
		return err
	}
	resp, ok := f.responses[key]
	if !ok || out == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeAPI) Get(_ context.Context, path string, out interface{}) error {
	return f.do(http.MethodGet, path, nil, nil, out)
}
func (f *fakeAPI) Post(_ context.Context, path string, body, out interface{}) error {
	return f.do(http.MethodPost, path, body, nil, out)
}
func (f *fakeAPI) Patch(_ context.Context, path string, body, out interface{}) error {
	return f.do(http.MethodPatch, path, body, nil, out)
}
func (f *fakeAPI) Delete(_ context.Context, path string, out interface{}) error {
	return f.do(http.MethodDelete, path, nil, nil, out)
}
func (f *fakeAPI) PatchMultipart(_ context.Context, path string, file ports.Attachment, out interface{}) error {
	return f.do(http.MethodPatch, path, nil, &file, out)
}

// fakeStock stock fijo por producto; cuenta lecturas.
type fakeStock struct {
	amounts map[int64]int
	err     error
	reads   int
}

func (s *fakeStock) AvailableStock(_ context.Context, productID int64) (int, error) {
	s.reads++
	if s.err != nil {
		return 0, s.err
	}
	return s.amounts[productID], nil
}

func newEngine(api *fakeAPI, stock *fakeStock) *movement.WorkflowEngine {
	return movement.NewWorkflowEngine(api, stock, nil)
}

func validInput() movement.CreateInput {
	return movement.CreateInput{OriginBranchID: 1, DestinationBranchID: 2, ProductID: 9, Quantity: 5}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_StockInsuficiente(t *testing.T) {
	api := newFakeAPI()
	stock := &fakeStock{amounts: map[int64]int{9: 3}}

	_, err := newEngine(api, stock).CreateMovement(context.Background(), validInput())

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "Quantidade insuficiente. Disponível: 3, Solicitado: 5.", err.Error())
	assert.Empty(t, api.calls, "no debe crearse el movimiento")
}

func TestCreateMovement_StockSuficiente(t *testing.T) {
	api := newFakeAPI()
	api.responses["POST /movements"] = map[string]interface{}{
		"id": 77, "origin_branch_id": 1, "destination_branch_id": 2, "product_id": 9, "quantity": 5, "status": "PENDING",
	}
	stock := &fakeStock{amounts: map[int64]int{9: 10}}

	m, err := newEngine(api, stock).CreateMovement(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(77), m.ID)
	assert.Equal(t, entity.MovementPending, m.Status)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, 1, stock.reads)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "/movements", api.calls[0].Path)
	body, _ := json.Marshal(api.calls[0].Body)
	assert.JSONEq(t, `{"origin_branch_id":1,"destination_branch_id":2,"product_id":9,"quantity":5,"observations":""}`, string(body))
}

func TestCreateMovement_StockIgualAlPedido(t *testing.T) {
	api := newFakeAPI()
	stock := &fakeStock{amounts: map[int64]int{9: 5}}

	m, err := newEngine(api, stock).CreateMovement(context.Background(), validInput())
	require.NoError(t, err)
	// Respuesta sin cuerpo: se completa con la entrada.
	assert.Equal(t, entity.MovementPending, m.Status)
	assert.Equal(t, int64(9), m.ProductID)
	assert.Equal(t, 5, m.Quantity)
}

func TestCreateMovement_Validaciones(t *testing.T) {
	cases := []struct {
		name  string
		in    movement.CreateInput
		field string
		msg   string
	}{
		{"sin origen", movement.CreateInput{DestinationBranchID: 2, ProductID: 9, Quantity: 1}, "", movement.MsgRequiredFields},
		{"sin destino", movement.CreateInput{OriginBranchID: 1, ProductID: 9, Quantity: 1}, "", movement.MsgRequiredFields},
		{"sin producto", movement.CreateInput{OriginBranchID: 1, DestinationBranchID: 2, Quantity: 1}, "", movement.MsgRequiredFields},
		{"misma filial", movement.CreateInput{OriginBranchID: 1, DestinationBranchID: 1, ProductID: 9, Quantity: 1}, "destination_branch_id", movement.MsgSameBranch},
		{"cantidad cero", movement.CreateInput{OriginBranchID: 1, DestinationBranchID: 2, ProductID: 9}, "quantity", movement.MsgInvalidQuantity},
		{"cantidad negativa", movement.CreateInput{OriginBranchID: 1, DestinationBranchID: 2, ProductID: 9, Quantity: -3}, "quantity", movement.MsgInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			stock := &fakeStock{amounts: map[int64]int{9: 100}}

			_, err := newEngine(api, stock).CreateMovement(context.Background(), tc.in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.msg, verr.Message)
			assert.Zero(t, stock.reads, "la validación no consulta el stock")
			assert.Empty(t, api.calls)
		})
	}
}

func TestCreateMovement_ErrorAlLeerStock(t *testing.T) {
	cause := &apierror.Error{Status: 500}
	api := newFakeAPI()
	stock := &fakeStock{err: cause}

	_, err := newEngine(api, stock).CreateMovement(context.Background(), validInput())
	assert.Same(t, cause, err)
	assert.Empty(t, api.calls)
}

func TestCreateMovement_ErrorDelBackend(t *testing.T) {
	cause := &apierror.Error{Status: 409, Data: map[string]interface{}{"message": "Estoque reservado"}}
	api := newFakeAPI()
	api.errs["POST /movements"] = cause
	stock := &fakeStock{amounts: map[int64]int{9: 10}}

	_, err := newEngine(api, stock).CreateMovement(context.Background(), validInput())
	assert.Same(t, cause, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// StartMovement / FinishMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestStartMovement_OK(t *testing.T) {
	api := newFakeAPI()
	require.NoError(t, newEngine(api, &fakeStock{}).StartMovement(context.Background(), 42))
	require.Len(t, api.calls, 1)
	assert.Equal(t, http.MethodPatch, api.calls[0].Method)
	assert.Equal(t, "/movements/42/start", api.calls[0].Path)
}

func TestStartMovement_ConflictoDelBackendSinCambios(t *testing.T) {
	cause := &apierror.Error{Status: 409, Data: map[string]interface{}{"message": "Movimentação já está em andamento"}}
	api := newFakeAPI()
	api.errs["PATCH /movements/42/start"] = cause

	err := newEngine(api, &fakeStock{}).StartMovement(context.Background(), 42)
	assert.Same(t, cause, err)
	assert.Equal(t, "Movimentação já está em andamento", apierror.Extract(err))
}

func TestStartMovement_SesionExpirada(t *testing.T) {
	api := newFakeAPI()
	api.errs["PATCH /movements/42/start"] = domain.ErrSessionEnded

	err := newEngine(api, &fakeStock{}).StartMovement(context.Background(), 42)
	assert.True(t, movement.IsSessionEnded(err))
}

func TestStartKnown_RechazoLocal(t *testing.T) {
	api := newFakeAPI()
	m := &entity.Movement{ID: 42, Status: entity.MovementInProgress}

	err := newEngine(api, &fakeStock{}).StartKnown(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, api.calls)

	m.Status = entity.MovementPending
	require.NoError(t, newEngine(api, &fakeStock{}).StartKnown(context.Background(), m))
	assert.Len(t, api.calls, 1)
}

func TestFinishMovement_SinImagen(t *testing.T) {
	for name, proof := range map[string]movement.ProofImage{
		"vacía":     {},
		"cancelada": {Data: []byte{0xff, 0xd8}, Cancelled: true},
	} {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI()
			err := newEngine(api, &fakeStock{}).FinishMovement(context.Background(), 42, proof)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, movement.MsgProofRequired, verr.Message)
			assert.Empty(t, api.calls)
		})
	}
}

func TestFinishMovement_EnviaComprobante(t *testing.T) {
	api := newFakeAPI()
	img := []byte{0xff, 0xd8, 0xff, 0xe0}

	require.NoError(t, newEngine(api, &fakeStock{}).FinishMovement(context.Background(), 42, movement.ProofImage{Data: img}))
	require.Len(t, api.calls, 1)
	c := api.calls[0]
	assert.Equal(t, "/movements/42/end", c.Path)
	require.NotNil(t, c.File)
	assert.Equal(t, "file", c.File.FieldName)
	assert.Equal(t, "comprovante.jpg", c.File.FileName)
	assert.Equal(t, "image/jpeg", c.File.ContentType)
	assert.Equal(t, img, c.File.Data)
}

func TestFinishMovement_ErrorDelBackend(t *testing.T) {
	cause := &apierror.Error{Status: 409, Data: map[string]interface{}{"message": "Movimentação não está em andamento"}}
	api := newFakeAPI()
	api.errs["PATCH /movements/42/end"] = cause

	err := newEngine(api, &fakeStock{}).FinishMovement(context.Background(), 42, movement.ProofImage{Data: []byte{1}})
	assert.Same(t, cause, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrent_SinMovimiento(t *testing.T) {
	api := newFakeAPI()
	api.errs["GET /movements/current"] = &apierror.Error{Status: 404}

	m, err := newEngine(api, &fakeStock{}).Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)

	api = newFakeAPI()
	m, err = newEngine(api, &fakeStock{}).Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCurrent_ConMovimiento(t *testing.T) {
	api := newFakeAPI()
	api.responses["GET /movements/current"] = map[string]interface{}{
		"id": "42", "quantity": 5, "status": "IN_PROGRESS", "driver_id": 3,
		"product": map[string]interface{}{"id": 9, "name": "Guarda-chuva", "branch": map[string]interface{}{"id": 1, "name": "Centro"}},
		"branch":  map[string]interface{}{"id": 2, "name": "Norte"},
	}

	m, err := newEngine(api, &fakeStock{}).Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(42), m.ID)
	assert.Equal(t, int64(3), m.DriverID)
	assert.Equal(t, int64(1), m.OriginBranchID)
	assert.Equal(t, int64(2), m.DestinationBranchID)
	assert.Equal(t, int64(9), m.ProductID)
}

func TestListBranchMovements_OrdenYFiltro(t *testing.T) {
	api := newFakeAPI()
	api.responses["GET /movements/branches/me"] = []map[string]interface{}{
		{"id": 5, "status": "FINISHED"},
		{"id": 2, "status": "PENDING"},
		{"id": 9, "status": "PENDING"},
	}
	engine := newEngine(api, &fakeStock{})

	all, err := engine.ListBranchMovements(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{2, 5, 9}, []int64{all[0].ID, all[1].ID, all[2].ID})

	pending, err := engine.ListBranchMovements(context.Background(), entity.MovementPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(2), pending[0].ID)

	_, err = engine.ListBranchMovements(context.Background(), "LOST")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
