// Package memory implementa el almacenamiento del motor de inventario en memoria.
//
// Las transacciones se serializan con un mutex: Run trabaja sobre una copia del estado
// y solo la publica si fn termina sin error, así un fallo deja todo como estaba.
// Se usa en tests y con STORE_DRIVER=memory para ejecutar la API sin PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado completo del inventario protegido por un mutex.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

type sequences struct {
	material, purchase, receipt, consumption, ledger int64
}

type state struct {
	materials    map[int64]*entity.Material
	purchases    map[int64]*entity.PurchaseOrder
	receipts     map[int64]*entity.Receipt
	consumptions map[int64]*entity.Consumption
	ledger       []*entity.LedgerEntry
	seq          sequences
}

func newState() *state {
	return &state{
		materials:    map[int64]*entity.Material{},
		purchases:    map[int64]*entity.PurchaseOrder{},
		receipts:     map[int64]*entity.Receipt{},
		consumptions: map[int64]*entity.Consumption{},
	}
}

// clone copia profunda; el historial se copia por referencia porque sus filas no se mutan.
func (s *state) clone() *state {
	c := newState()
	for id, m := range s.materials {
		c.materials[id] = m.Clone()
	}
	for id, p := range s.purchases {
		c.purchases[id] = p.Clone()
	}
	for id, r := range s.receipts {
		c.receipts[id] = r.Clone()
	}
	for id, o := range s.consumptions {
		c.consumptions[id] = o.Clone()
	}
	c.ledger = append(make([]*entity.LedgerEntry, 0, len(s.ledger)+1), s.ledger...)
	c.seq = s.seq
	return c
}

func (s *state) repos() inventory.Repos {
	return inventory.Repos{
		Materials:    &materialRepo{st: s},
		Purchases:    &purchaseRepo{st: s},
		Receipts:     &receiptRepo{st: s},
		Consumptions: &consumptionRepo{st: s},
		Ledger:       &ledgerRepo{st: s},
	}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	work := s.state.clone()
	if err := fn(ctx, work.repos()); err != nil {
		return err
	}
	s.state = work
	return nil
}

// ReadOnly ejecuta fn sobre el estado vigente. Los repositorios devuelven copias.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return fn(ctx, s.state.repos())
}

// SeedMaterial inserta un material con sus contadores tal cual (importaciones y tests).
func (s *Store) SeedMaterial(m *entity.Material) *entity.Material {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.seq.material++
	c := m.Clone()
	c.ID = s.state.seq.material
	s.state.materials[c.ID] = c
	return c.Clone()
}
