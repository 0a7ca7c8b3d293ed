package ports

import "context"

// StockLedger vista de solo lectura del stock en el backend.
// AvailableStock siempre consulta al backend: no se cachea entre validación y decisión.
type StockLedger interface {
	AvailableStock(ctx context.Context, productID int64) (int, error)
}
