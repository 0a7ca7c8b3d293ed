package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ErrorResponse cuerpo de error HTTP. Error lleva el código de máquina (TOKEN_EXPIRED, BAD_CREDENTIALS...).
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Códigos de error del contrato.
const (
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeBadCredentials    = "BAD_CREDENTIALS"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeMissingToken      = "MISSING_TOKEN"
	CodeForbidden         = "FORBIDDEN"
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInternal          = "INTERNAL"
)

// ID identificador numérico que acepta número o string numérico en JSON.
type ID int64

// UnmarshalJSON acepta 7 y "7".
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("id no numérico: %q", s)
		}
		*id = ID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n)
	return nil
}
