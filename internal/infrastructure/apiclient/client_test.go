package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/apiclient"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/credstore"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/navigation"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/notify"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	client   *apiclient.Client
	creds    *credstore.Credentials
	nav      *navigation.Recorder
	notices  *notify.Recorder
	registry *prometheus.Registry
	server   *httptest.Server
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := &fixture{
		creds:    credstore.NewCredentials(credstore.NewMemoryStore()),
		nav:      navigation.NewRecorder("MovementList"),
		notices:  &notify.Recorder{},
		registry: prometheus.NewRegistry(),
		server:   srv,
	}
	f.client = apiclient.New(apiclient.Options{
		BaseURL:     srv.URL + "/",
		Credentials: f.creds,
		Navigator:   f.nav,
		Notifier:    f.notices,
		Metrics:     apiclient.NewMetrics(f.registry),
	})
	return f
}

func (f *fixture) login(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, f.creds.Save(context.Background(), &entity.Session{
		Token: token, UserID: 3, Role: entity.RoleDriver, DisplayName: "Motorista",
	}))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// Enriquecimiento del request
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_AdjuntaBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(apiclient.HeaderRequestID)
		assert.Equal(t, "/movements", r.URL.Path)
		writeJSON(w, http.StatusOK, []interface{}{})
	})
	f.login(t, "tok-abc")

	var out []map[string]interface{}
	require.NoError(t, f.client.Get(context.Background(), "movements", &out))

	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_SinTokenVaSinAutenticar(t *testing.T) {
	var hasAuth bool
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "token": "t", "profile": "ADMIN"})
	})

	require.NoError(t, f.client.Post(context.Background(), "/login", map[string]string{"email": "a@b.c"}, nil))
	assert.False(t, hasAuth, "sin token no se envía Authorization")
}

// ──────────────────────────────────────────────────────────────────────────────
// Interceptación de la respuesta
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: 401 con error TOKEN_EXPIRED -> borra el token, un único reset a Login,
// un único aviso, y la llamada no devuelve un error HTTP normal.
func TestClient_TokenExpiradoCierraSesion(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "TOKEN_EXPIRED"})
	})
	f.login(t, "tok-viejo")

	var out map[string]interface{}
	err := f.client.Get(context.Background(), "/movements/current", &out)

	require.ErrorIs(t, err, domain.ErrSessionEnded)
	var apiErr *apierror.Error
	assert.False(t, errors.As(err, &apiErr), "la expiración no se propaga como error HTTP")
	assert.Nil(t, out)

	tok, _ := f.creds.Token(context.Background())
	assert.Empty(t, tok, "el token se borra")
	assert.Equal(t, 1, f.nav.Resets())
	assert.Equal(t, []navigation.Entry{{Route: ports.RouteLogin}}, f.nav.History())
	require.Len(t, f.notices.Notices(), 1)
	assert.Equal(t, "Sessão expirada, faça login novamente", f.notices.Notices()[0].Message)
	assert.True(t, f.client.SignedOut())
	assert.Equal(t, 1.0, metricValue(t, f.registry, "umbrella_forced_signouts_total", nil))
}

// Caso 2: 401 con otro código -> sin cierre de sesión, error devuelto sin cambios.
func TestClient_401SinMarcaDeExpiracionSePropaga(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "BAD_CREDENTIALS"})
	})
	f.login(t, "tok-abc")

	err := f.client.Post(context.Background(), "/login", map[string]string{"email": "x@y.z", "password": "bad"}, nil)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "BAD_CREDENTIALS", apiErr.Field("error"))
	assert.Equal(t, "BAD_CREDENTIALS", apierror.Extract(err))

	tok, _ := f.creds.Token(context.Background())
	assert.Equal(t, "tok-abc", tok, "el token no se toca")
	assert.Zero(t, f.nav.Resets())
	assert.Empty(t, f.notices.Notices())
}

func TestClient_401SinCuerpo(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	f.login(t, "tok-abc")

	err := f.client.Get(context.Background(), "/products", nil)

	require.Error(t, err)
	assert.Equal(t, apierror.MsgUnauthorized, apierror.Extract(err))
	assert.Zero(t, f.nav.Resets())
}

// Caso 3: varias respuestas de expiración concurrentes -> un solo reset y un solo aviso.
func TestClient_CierreDeSesionUnaSolaVez(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "TOKEN_EXPIRED"})
	})
	f.login(t, "tok-viejo")

	const calls = 16
	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.client.Get(context.Background(), "/movements", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrSessionEnded)
	}
	assert.Equal(t, 1, f.nav.Resets(), "reset de navegación exactamente una vez")
	assert.Len(t, f.notices.Notices(), 1, "aviso exactamente una vez")
}

func TestClient_ResumeSessionRearma(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "TOKEN_EXPIRED"})
	})
	f.login(t, "tok-1")
	_ = f.client.Get(context.Background(), "/movements", nil)

	f.login(t, "tok-2")
	f.client.ResumeSession()
	assert.False(t, f.client.SignedOut())
	_ = f.client.Get(context.Background(), "/movements", nil)

	assert.Equal(t, 2, f.nav.Resets(), "una nueva sesión puede volver a expirar")
}

// Caso 4: una respuesta de expiración de la sesión anterior llega después de un nuevo
// login -> no repite aviso ni reset y no borra las credenciales nuevas.
func TestClient_ExpiracionTardiaNoCierraLaSesionNueva(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lento" {
			close(started)
			<-release
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "TOKEN_EXPIRED"})
	})
	f.login(t, "tok-viejo")

	slow := make(chan error, 1)
	go func() { slow <- f.client.Get(context.Background(), "/lento", nil) }()
	<-started

	require.ErrorIs(t, f.client.Get(context.Background(), "/movements", nil), domain.ErrSessionEnded)
	require.Equal(t, 1, f.nav.Resets())

	f.login(t, "tok-nuevo")
	f.client.ResumeSession()

	close(release)
	assert.ErrorIs(t, <-slow, domain.ErrSessionEnded, "la respuesta vieja igual se descarta")

	assert.Equal(t, 1, f.nav.Resets(), "un único reset")
	assert.Len(t, f.notices.Notices(), 1, "un único aviso")
	assert.False(t, f.client.SignedOut())
	tok, err := f.creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-nuevo", tok, "las credenciales nuevas se conservan")
}

// Sin cierre previo: la respuesta de un token ya reemplazado tampoco cierra la sesión.
func TestClient_ExpiracionDeTokenReemplazado(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "TOKEN_EXPIRED"})
	})
	f.login(t, "tok-viejo")

	done := make(chan error, 1)
	go func() { done <- f.client.Get(context.Background(), "/movements", nil) }()
	<-started
	f.login(t, "tok-nuevo")
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrSessionEnded)
	assert.Zero(t, f.nav.Resets())
	assert.Empty(t, f.notices.Notices())
	tok, _ := f.creds.Token(context.Background())
	assert.Equal(t, "tok-nuevo", tok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos de red y respuestas malformadas
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_ErrorDeRed(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	f.server.Close()

	err := f.client.Get(context.Background(), "/movements", nil)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.Equal(t, apierror.MsgConnection, apierror.Extract(err))
	assert.Equal(t, 1.0, metricValue(t, f.registry, "umbrella_api_requests_total", map[string]string{"method": "GET", "status": "network"}))
}

func TestClient_RespuestaMalformada(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "{not json")
	})

	var out map[string]interface{}
	err := f.client.Get(context.Background(), "/products", &out)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Contains(t, apierror.Extract(err), "respuesta inválida")
}

func TestClient_ErrorConMensajeDelBackend(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Produto não encontrado"})
	})

	err := f.client.Get(context.Background(), "/products/99", nil)

	assert.Equal(t, "Produto não encontrado", apierror.Extract(err))
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))
	assert.Equal(t, 1.0, metricValue(t, f.registry, "umbrella_api_requests_total", map[string]string{"method": "GET", "status": "404"}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Multipart
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_PatchMultipart(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "comprovante.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
		w.WriteHeader(http.StatusNoContent)
	})
	f.login(t, "tok")

	err := f.client.PatchMultipart(context.Background(), "/movements/42/end", ports.Attachment{
		FieldName: "file", FileName: "comprovante.jpg", ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF},
	}, nil)
	assert.NoError(t, err)
}

func TestClient_PatchMultipartVacio(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no debe llegar al servidor")
	})

	err := f.client.PatchMultipart(context.Background(), "/movements/42/end", ports.Attachment{FileName: "x.jpg"}, nil)
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Métricas
// ──────────────────────────────────────────────────────────────────────────────

// metricValue valor del contador name con las etiquetas indicadas, o 0 si no existe.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range labels {
				if got[k] != v {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
