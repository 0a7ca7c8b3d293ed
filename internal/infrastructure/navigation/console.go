package navigation

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Console navegador del CLI: registra el historial e imprime cada reset.
type Console struct {
	*Recorder
	out io.Writer
}

// NewConsole construye el navegador de consola que escribe en out.
func NewConsole(out io.Writer) *Console {
	return &Console{Recorder: NewRecorder(""), out: out}
}

func (c *Console) Reset(ctx context.Context, route string, params map[string]string) error {
	if err := c.Recorder.Reset(ctx, route, params); err != nil {
		return err
	}
	_, err := fmt.Fprintf(c.out, "→ %s%s\n", route, formatParams(params))
	return err
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
