// Package apierror define el error normalizado del transporte HTTP y la extracción
// de un mensaje legible para el usuario a partir de él.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Mensajes fijos mostrados al usuario (pt-BR, idioma del producto).
const (
	MsgBadRequest   = "Requisição inválida"
	MsgUnauthorized = "Não autorizado"
	MsgForbidden    = "Acesso negado"
	MsgNotFound     = "Recurso não encontrado"
	MsgInternal     = "Erro interno do servidor"
	MsgConnection   = "Erro de conexão. Verifique sua internet."
	MsgUnexpected   = "Ocorreu um erro inesperado"
)

// Error es el TransportError: fallo HTTP (Status > 0, con Data decodificado) o de red (Status == 0, Err con la causa).
type Error struct {
	Method string
	Path   string
	Status int
	// Data es el cuerpo decodificado: map[string]interface{} para objetos JSON,
	// string para texto plano o JSON string, nil si vino vacío.
	Data interface{}
	Err  error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Status, Extract(e))
}

func (e *Error) Unwrap() error { return e.Err }

// Field devuelve el campo string key del cuerpo JSON, o "" si no existe.
func (e *Error) Field(key string) string {
	m, ok := e.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// StatusOf devuelve el status HTTP de err si es un *Error, o 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Extract normaliza err a un mensaje para el usuario. Prioridad: cuerpo string,
// campos message, error y msg, mensaje fijo por status, error de conectividad,
// mensaje de la causa y por último un mensaje genérico. Función pura.
func Extract(err error) string {
	if err == nil {
		return MsgUnexpected
	}
	var e *Error
	if !errors.As(err, &e) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return MsgUnexpected
	}

	if msg := bodyMessage(e.Data); msg != "" {
		return msg
	}
	if msg, ok := statusMessages[e.Status]; ok {
		return msg
	}
	if e.Err != nil {
		if isConnectivity(e.Err) {
			return MsgConnection
		}
		if msg := e.Err.Error(); msg != "" {
			return msg
		}
	}
	if e.Status > 0 {
		if text := http.StatusText(e.Status); text != "" {
			return text
		}
	}
	return MsgUnexpected
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          MsgBadRequest,
	http.StatusUnauthorized:        MsgUnauthorized,
	http.StatusForbidden:           MsgForbidden,
	http.StatusNotFound:            MsgNotFound,
	http.StatusInternalServerError: MsgInternal,
}

func bodyMessage(data interface{}) string {
	switch d := data.(type) {
	case string:
		return strings.TrimSpace(d)
	case map[string]interface{}:
		for _, key := range []string{"message", "error", "msg"} {
			if msg := fieldText(d[key]); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// fieldText acepta string o lista de strings (validadores que devuelven varios mensajes).
func fieldText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func isConnectivity(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
