package memory

import (
	"context"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ dispatch.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones sobre el Store y deshace las escrituras de fn si falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios que anotan lo que escriben; en error lo deshace.
// Las escrituras hechas fuera de la transacción en paralelo sobreviven al rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	j := newJournal()
	if err := fn(&MovementRepository{s: r.s, j: j}, &ProductRepository{s: r.s, j: j}); err != nil {
		r.s.undo(j)
		return err
	}
	return nil
}
