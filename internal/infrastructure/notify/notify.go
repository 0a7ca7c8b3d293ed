package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jhoicas/umbrella-client/internal/application/ports"
)

var (
	_ ports.Notifier = (*Console)(nil)
	_ ports.Notifier = (*Recorder)(nil)
)

// Console escribe los avisos en out (stderr en el CLI).
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole construye el notificador de consola.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s] %s\n", title, message)
}

// Notice aviso registrado.
type Notice struct {
	Title   string
	Message string
}

// Recorder guarda los avisos en memoria.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Title: title, Message: message})
}

// Notices copia de los avisos recibidos.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}
