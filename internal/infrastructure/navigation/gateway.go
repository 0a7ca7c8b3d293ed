package navigation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/umbrella-client/internal/application/ports"
)

var (
	_ ports.Navigator = (*Gateway)(nil)
	_ ports.Navigator = (*Recorder)(nil)
)

// Gateway handle de navegación del proceso: el código que no es pantalla emite comandos
// aquí y la capa de presentación adjunta el navegador real cuando está lista.
// Sin navegador adjunto los comandos se descartan.
type Gateway struct {
	target atomic.Pointer[navigatorRef]
}

type navigatorRef struct{ ports.Navigator }

// NewGateway construye un gateway sin navegador adjunto.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Attach adjunta (o reemplaza) el navegador real. nil lo desadjunta.
func (g *Gateway) Attach(n ports.Navigator) {
	if n == nil {
		g.target.Store(nil)
		return
	}
	g.target.Store(&navigatorRef{n})
}

// Ready indica si hay un navegador adjunto.
func (g *Gateway) Ready() bool {
	return g.target.Load() != nil
}

// Reset delega en el navegador adjunto.
func (g *Gateway) Reset(ctx context.Context, route string, params map[string]string) error {
	ref := g.target.Load()
	if ref == nil {
		return nil
	}
	return ref.Reset(ctx, route, params)
}

// Entry una entrada del historial de navegación.
type Entry struct {
	Route  string
	Params map[string]string
}

// Recorder navegador que mantiene el historial en memoria. Reset lo reemplaza por una única entrada.
type Recorder struct {
	mu      sync.Mutex
	history []Entry
	resets  int
}

// NewRecorder construye un Recorder con initial como primera ruta (vacío = sin historial).
func NewRecorder(initial string) *Recorder {
	r := &Recorder{}
	if initial != "" {
		r.history = []Entry{{Route: initial}}
	}
	return r
}

func (r *Recorder) Reset(_ context.Context, route string, params map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = []Entry{{Route: route, Params: params}}
	r.resets++
	return nil
}

// Navigate apila route sobre el historial actual.
func (r *Recorder) Navigate(route string, params map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, Entry{Route: route, Params: params})
}

// Current ruta visible, o "".
func (r *Recorder) Current() Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Entry{}
	}
	return r.history[len(r.history)-1]
}

// History copia del historial.
func (r *Recorder) History() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.history))
	copy(out, r.history)
	return out
}

// Resets cantidad de Reset recibidos.
func (r *Recorder) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}
