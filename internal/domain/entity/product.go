package entity

import "time"

// Product producto de una filial con su stock actual (Amount).
// Amount es autoritativo en el backend; el cliente lo vuelve a leer antes de cada decisión de cantidad.
type Product struct {
	ID          int64
	BranchID    int64
	Name        string
	Description string
	URLCover    string
	Amount      int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Branch *Branch
}
