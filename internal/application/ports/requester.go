package ports

import "context"

// Requester verbos HTTP del transporte con sesión contra la URL base configurada.
// body se serializa como JSON; out (si no es nil) recibe el JSON de la respuesta.
// Si la sesión expiró durante la llamada devuelve domain.ErrSessionEnded y out queda intacto.
type Requester interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Patch(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
	PatchMultipart(ctx context.Context, path string, file Attachment, out interface{}) error
}

// Attachment archivo enviado como multipart (comprobante de entrega).
type Attachment struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}
