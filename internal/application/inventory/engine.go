package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	domaininv "github.com/jhoicas/obrica-api/internal/domain/inventory"
)

// EngineConfig dependencias opcionales del motor.
type EngineConfig struct {
	// Location zona horaria de la fecha de los folios; UTC si es nil.
	Location *time.Location
	// Now reloj del motor; time.Now si es nil.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Engine es el motor de flujo de stock: compras, entradas, salidas y ajustes.
// Cada operación es un comando que se valida fuera de la transacción y se aplica
// dentro de exactamente un TxRunner.Run (bloqueo -> verificación -> contadores -> documento -> historial).
type Engine struct {
	tx  TxRunner
	loc *time.Location
	now func() time.Time
	log zerolog.Logger
}

// NewEngine construye el motor.
func NewEngine(tx TxRunner, cfg EngineConfig) *Engine {
	e := &Engine{tx: tx, loc: cfg.Location, now: cfg.Now, log: cfg.Logger}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// operation datos comunes a todo lo que escribe un comando.
type operation struct {
	id     string
	userID string
	now    time.Time // en la zona horaria del motor
}

// today fecha del día (sin hora) en la zona del motor.
func (op *operation) today() time.Time {
	y, m, d := op.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, op.now.Location())
}

// dateOr devuelve la fecha del documento o la de hoy si no se indicó.
func (op *operation) dateOr(t time.Time) time.Time {
	if t.IsZero() {
		return op.today()
	}
	return t
}

// command contrato de los comandos del motor.
type command[T any] interface {
	validate() error
	apply(ctx context.Context, op *operation, r Repos) (T, error)
	actor() string
}

// execute valida el comando y lo aplica dentro de una única transacción.
func execute[T any](ctx context.Context, e *Engine, cmd command[T]) (T, error) {
	var out T
	if err := cmd.validate(); err != nil {
		return out, err
	}
	op := &operation{
		id:     uuid.New().String(),
		userID: cmd.actor(),
		now:    e.now().In(e.loc),
	}
	err := e.tx.Run(ctx, func(ctx context.Context, r Repos) error {
		res, err := cmd.apply(ctx, op, r)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// snapshot foto de los contadores antes de mutar el material.
func snapshot(m *entity.Material) domaininv.Counters {
	return domaininv.Counters{Physical: m.StockPhysical, Committed: m.StockCommitted}
}

// ledgerEntry arma la fila de historial con la foto previa y el estado actual del material.
func ledgerEntry(op *operation, m *entity.Material, before domaininv.Counters, kind entity.LedgerKind, ref *int64, qty decimal.Decimal, notes string) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		MaterialID:      m.ID,
		Kind:            kind,
		ReferenceID:     ref,
		Quantity:        qty,
		PhysicalBefore:  before.Physical,
		PhysicalAfter:   m.StockPhysical,
		CommittedBefore: before.Committed,
		CommittedAfter:  m.StockCommitted,
		Notes:           notes,
		OperationID:     op.id,
		CreatedBy:       op.userID,
		CreatedAt:       op.now,
	}
}

// lockMaterial bloquea el material; NotFound si no existe.
func lockMaterial(ctx context.Context, r Repos, id int64) (*entity.Material, error) {
	m, err := r.Materials.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: material %d no existe", domain.ErrNotFound, id)
	}
	return m, nil
}

// lockActiveMaterial como lockMaterial pero exige que el material esté activo en el catálogo.
func lockActiveMaterial(ctx context.Context, r Repos, id int64) (*entity.Material, error) {
	m, err := lockMaterial(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, fmt.Errorf("%w: el material %s está inactivo", domain.ErrInvalidState, m.Name)
	}
	return m, nil
}

func ref(id int64) *int64 { return &id }
