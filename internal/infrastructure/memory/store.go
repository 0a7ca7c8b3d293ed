// Package memory implementa los repositorios del sandbox en memoria.
// Las transacciones se serializan; si fn devuelve error se deshacen solo las filas que tocó.
package memory

import (
	"strings"
	"sync"

	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// Store datos del sandbox. Los repositorios guardan y devuelven copias.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users     map[int64]entity.User
	branches  map[int64]entity.Branch
	products  map[int64]entity.Product
	movements map[int64]entity.Movement

	seq map[string]int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		users:     map[int64]entity.User{},
		branches:  map[int64]entity.Branch{},
		products:  map[int64]entity.Product{},
		movements: map[int64]entity.Movement{},
		seq:       map[string]int64{},
	}
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Branches repositorio de filiales.
func (s *Store) Branches() *BranchRepository { return &BranchRepository{s: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{s: s} }

// next id secuencial por tabla; requiere s.mu tomado.
func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// journal valor previo de cada fila escrita dentro de una transacción (nil = no existía).
// Las secuencias no se revierten: un rollback deja huecos de ID, como en Postgres.
type journal struct {
	products  map[int64]*entity.Product
	movements map[int64]*entity.Movement
}

func newJournal() *journal {
	return &journal{products: map[int64]*entity.Product{}, movements: map[int64]*entity.Movement{}}
}

// keepProduct y keepMovement anotan la fila antes de la primera escritura; requieren s.mu tomado.
// Un journal nil (repositorio fuera de transacción) no anota nada.
func (j *journal) keepProduct(s *Store, id int64) {
	if j == nil {
		return
	}
	if _, seen := j.products[id]; seen {
		return
	}
	j.products[id] = nil
	if p, ok := s.products[id]; ok {
		j.products[id] = &p
	}
}

func (j *journal) keepMovement(s *Store, id int64) {
	if j == nil {
		return
	}
	if _, seen := j.movements[id]; seen {
		return
	}
	j.movements[id] = nil
	if m, ok := s.movements[id]; ok {
		j.movements[id] = &m
	}
}

// undo devuelve al estado previo las filas anotadas; el resto del store no se toca.
func (s *Store) undo(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range j.products {
		if p == nil {
			delete(s.products, id)
			continue
		}
		s.products[id] = *p
	}
	for id, m := range j.movements {
		if m == nil {
			delete(s.movements, id)
			continue
		}
		s.movements[id] = *m
	}
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
