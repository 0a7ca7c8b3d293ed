package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa Requester.
var _ ports.Requester = (*Client)(nil)

const (
	// HeaderRequestID correlaciona la llamada en los logs del cliente y del backend.
	HeaderRequestID = "X-Request-ID"

	// ExpiredCode valor del campo error que marca un token vencido.
	ExpiredCode = "TOKEN_EXPIRED"

	noticeTitle   = "Aviso"
	noticeExpired = "Sessão expirada, faça login novamente"

	maxBodyBytes = 10 << 20
)

// Options dependencias del transporte. Credentials y Navigator son obligatorios.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client // opcional; si se pasa, Timeout se ignora
	Credentials repository.CredentialStore
	Navigator   ports.Navigator
	Notifier    ports.Notifier
	Logger      *logger.Logger
	Metrics     *Metrics
}

// Client transporte HTTP con sesión: agrega el Bearer token a cada llamada y, si el backend
// responde 401 con error TOKEN_EXPIRED, ejecuta el cierre de sesión global una sola vez.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      repository.CredentialStore
	nav        ports.Navigator
	notifier   ports.Notifier
	log        *logger.Logger
	metrics    *Metrics

	// session serializa signOut con ResumeSession. generation cuenta los logins: una respuesta
	// de una generación anterior no cierra la sesión actual.
	session    sync.Mutex
	generation atomic.Uint64
	signedOut  atomic.Bool
}

// New construye el transporte.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		creds:      opts.Credentials,
		nav:        opts.Navigator,
		notifier:   opts.Notifier,
		log:        log.Named("apiclient"),
		metrics:    opts.Metrics,
	}
}

// ── Verbos ────────────────────────────────────────────────────────────────────

// Get ejecuta GET path.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post ejecuta POST path con body JSON.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch ejecuta PATCH path con body JSON (nil = sin cuerpo).
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete ejecuta DELETE path.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// PatchMultipart ejecuta PATCH path con un único archivo en multipart/form-data.
func (c *Client) PatchMultipart(ctx context.Context, path string, file ports.Attachment, out interface{}) error {
	payload, contentType, err := encodeMultipart(file)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPatch, path, payload, contentType, out)
}

// Do ejecuta method path serializando body como JSON.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("codificar body: %w", err)
		}
		payload = b
		contentType = "application/json"
	}
	return c.send(ctx, method, path, payload, contentType, out)
}

// ── Sesión ────────────────────────────────────────────────────────────────────

// ResumeSession abre una nueva generación de sesión y rearma el cierre por expiración;
// se llama tras un login exitoso.
func (c *Client) ResumeSession() {
	c.session.Lock()
	defer c.session.Unlock()
	c.generation.Add(1)
	c.signedOut.Store(false)
}

// SignedOut indica si ya se ejecutó el cierre de sesión por expiración en esta sesión.
func (c *Client) SignedOut() bool {
	return c.signedOut.Load()
}

// ── Núcleo ────────────────────────────────────────────────────────────────────

// send: leer token -> adjuntar -> enviar -> interpretar respuesta -> cerrar sesión si aplica.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType string, out interface{}) error {
	path = "/" + strings.TrimLeft(path, "/")

	generation := c.generation.Load()
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("leer token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, "network", time.Since(start))
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("fallo de red")
		return &apierror.Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), elapsed)
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Str("request_id", requestID).
		Msg("llamada api")
	if err != nil {
		return &apierror.Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("leer respuesta: %w", err)}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apierror.Error{Method: method, Path: path, Status: resp.StatusCode, Data: decodeData(raw)}
		if isExpired(apiErr) {
			c.signOut(ctx, generation, token)
			return domain.ErrSessionEnded
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apierror.Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("respuesta inválida: %w", err)}
	}
	return nil
}

func isExpired(e *apierror.Error) bool {
	return e.Status == http.StatusUnauthorized && e.Field("error") == ExpiredCode
}

// signOut: aviso, borrar credenciales, reset de navegación a Login. A lo sumo una vez por sesión.
// No hace nada si la respuesta pertenece a otra sesión: enviada antes de un login posterior
// (otra generación) o con un token que ya no es el guardado.
func (c *Client) signOut(ctx context.Context, generation uint64, sentToken string) {
	// El cierre de sesión no depende de que el llamador siga esperando.
	ctx = context.WithoutCancel(ctx)

	c.session.Lock()
	defer c.session.Unlock()
	if generation != c.generation.Load() || c.signedOut.Load() {
		return
	}
	if current, err := c.creds.Token(ctx); err == nil && current != sentToken {
		c.log.Debug().Msg("token expirado de una sesión anterior, se ignora")
		return
	}
	c.signedOut.Store(true)

	c.log.Warn().Msg("sesión expirada, cerrando sesión")
	c.metrics.signOut()

	if c.notifier != nil {
		c.notifier.Notify(ctx, noticeTitle, noticeExpired)
	}
	if err := c.creds.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("borrar credenciales")
	}
	if err := c.nav.Reset(ctx, ports.RouteLogin, nil); err != nil {
		c.log.Error().Err(err).Msg("reset de navegación")
	}
}

// decodeData interpreta el cuerpo de error: objeto JSON -> map, JSON string o texto -> string.
func decodeData(raw []byte) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var data interface{}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return string(trimmed)
	}
	switch data.(type) {
	case map[string]interface{}, string:
		return data
	}
	return string(trimmed)
}

func encodeMultipart(file ports.Attachment) ([]byte, string, error) {
	if len(file.Data) == 0 {
		return nil, "", errors.New("multipart: archivo vacío")
	}
	field := file.FieldName
	if field == "" {
		field = "file"
	}
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.FileName))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
