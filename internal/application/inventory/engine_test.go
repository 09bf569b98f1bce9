package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
	"github.com/jhoicas/obrica-api/internal/infrastructure/memory"
)

const testUser = "user-1"

var fixedNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func q(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func qp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// fixture motor sobre el almacén en memoria con un material "Cemento" en cero.
type fixture struct {
	ctx    context.Context
	store  *memory.Store
	engine *inventory.Engine
	mat    *entity.Material
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:   context.Background(),
		store: store,
		engine: inventory.NewEngine(store, inventory.EngineConfig{
			Now:    func() time.Time { return fixedNow },
			Logger: zerolog.Nop(),
		}),
	}
	f.mat = store.SeedMaterial(&entity.Material{Code: "CEM", Name: "Cemento", Unit: "BULTO", Active: true})
	return f
}

func (f *fixture) material(t *testing.T) *entity.Material {
	t.Helper()
	m, err := f.engine.GetMaterial(f.ctx, f.mat.ID)
	require.NoError(t, err)
	return m
}

func (f *fixture) purchase(t *testing.T, id int64) *entity.PurchaseOrder {
	t.Helper()
	p, err := f.engine.GetPurchase(f.ctx, id)
	require.NoError(t, err)
	return p
}

func (f *fixture) ledger(t *testing.T) []*entity.LedgerEntry {
	t.Helper()
	_, entries, err := f.engine.MaterialLedger(f.ctx, f.mat.ID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) buy(t *testing.T, qty, price int64) *entity.PurchaseOrder {
	t.Helper()
	p, err := f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{
		MaterialID: f.mat.ID, Quantity: q(qty), UnitPrice: q(price), UserID: testUser,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) receive(t *testing.T, orderID, qty int64) *entity.Receipt {
	t.Helper()
	r, err := f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{
		PurchaseOrderID: orderID, Quantity: q(qty), UserID: testUser,
	})
	require.NoError(t, err)
	return r
}

func assertCounters(t *testing.T, m *entity.Material, physical, committed int64) {
	t.Helper()
	assert.True(t, m.StockPhysical.Equal(q(physical)), "físico esperado %d, obtenido %s", physical, m.StockPhysical)
	assert.True(t, m.StockCommitted.Equal(q(committed)), "virtual esperado %d, obtenido %s", committed, m.StockCommitted)
}

// ── Escenarios ────────────────────────────────────────────────────────────────

func TestEscenarioA_CompraYDosEntradas(t *testing.T) {
	f := newFixture(t)

	order := f.buy(t, 100, 10)
	assert.Equal(t, "COM-20240115-001", order.Folio)
	assert.True(t, order.Total.Equal(q(1000)))
	assert.Equal(t, entity.PurchaseStatusOpen, order.Status)
	assert.Equal(t, "2024-01-15", order.Date.Format("2006-01-02"), "sin fecha se usa la de hoy")
	assertCounters(t, f.material(t), 0, 100)

	r1 := f.receive(t, order.ID, 60)
	assert.Equal(t, "ENT-20240115-001", r1.Folio)
	assert.Equal(t, f.mat.ID, r1.MaterialID)
	assertCounters(t, f.material(t), 60, 40)
	p := f.purchase(t, order.ID)
	assert.True(t, p.Received.Equal(q(60)))
	assert.Equal(t, entity.PurchaseStatusOpen, p.Status)

	r2 := f.receive(t, order.ID, 40)
	assert.Equal(t, "ENT-20240115-002", r2.Folio)
	assertCounters(t, f.material(t), 100, 0)
	p = f.purchase(t, order.ID)
	assert.True(t, p.Received.Equal(q(100)))
	assert.Equal(t, entity.PurchaseStatusFulfilled, p.Status)
}

func TestEscenarioB_SalidaYCancelacion(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 100, 10)
	f.receive(t, order.ID, 100)

	out, err := f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{
		MaterialID: f.mat.ID, Quantity: q(30), Reference: "Site A", UserID: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "SAL-20240115-001", out.Folio)
	assertCounters(t, f.material(t), 70, 0)

	cancelled, err := f.engine.CancelConsumption(f.ctx, inventory.CancelConsumptionCommand{ConsumptionID: out.ID, UserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, cancelled.Status)
	assertCounters(t, f.material(t), 100, 0)
}

func TestEscenarioC_CancelarCompraSinEntradas(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 50, 10)

	cancelled, err := f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID, UserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelled, cancelled.Status)
	assertCounters(t, f.material(t), 0, 0)

	entries := f.ledger(t)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.LedgerPurchaseCancel, entries[1].Kind)
	assert.True(t, entries[1].Quantity.Equal(q(-50)))
	assert.Equal(t, "Cancelación compra "+order.Folio, entries[1].Notes)
}

func TestEscenarioD_CompraConEntradaActivaNoSeCancela(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 50, 10)
	rec := f.receive(t, order.ID, 20)

	_, err := f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID, UserID: testUser})
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "Cancele las entradas primero")
	assertCounters(t, f.material(t), 20, 30)

	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID, UserID: testUser})
	require.NoError(t, err)
	assertCounters(t, f.material(t), 0, 50)
	p := f.purchase(t, order.ID)
	assert.True(t, p.Received.IsZero())
	assert.Equal(t, entity.PurchaseStatusOpen, p.Status)

	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID, UserID: testUser})
	require.NoError(t, err)
	assertCounters(t, f.material(t), 0, 0)
}

func TestEscenarioE_AjusteRequiereJustificacion(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: qp(5), UserID: testUser})
	require.ErrorIs(t, err, domain.ErrMissingJustification)
	assertCounters(t, f.material(t), 0, 0)
	assert.Empty(t, f.ledger(t))

	m, err := f.engine.Adjust(f.ctx, inventory.AdjustCommand{
		MaterialID: f.mat.ID, NewPhysical: qp(5), Justification: "conteo físico", UserID: testUser,
	})
	require.NoError(t, err)
	assert.True(t, m.StockPhysical.Equal(q(5)))

	entries := f.ledger(t)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.LedgerManualAdjustment, e.Kind)
	assert.True(t, e.Quantity.Equal(q(5)))
	assert.True(t, e.PhysicalBefore.IsZero())
	assert.True(t, e.PhysicalAfter.Equal(q(5)))
	assert.Equal(t, "Ajuste manual: conteo físico", e.Notes)
	assert.Nil(t, e.ReferenceID)
	assert.Equal(t, testUser, e.CreatedBy)
}

// ── Propiedades ───────────────────────────────────────────────────────────────

func TestEntrada_IdaYVueltaRestauraEstado(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 80, 3)
	f.receive(t, order.ID, 30)

	beforeMat := f.material(t)
	beforeOrder := f.purchase(t, order.ID)

	rec := f.receive(t, order.ID, 50)
	assert.Equal(t, entity.PurchaseStatusFulfilled, f.purchase(t, order.ID).Status)

	_, err := f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID, UserID: testUser})
	require.NoError(t, err)

	afterMat := f.material(t)
	afterOrder := f.purchase(t, order.ID)
	assert.True(t, afterMat.StockPhysical.Equal(beforeMat.StockPhysical))
	assert.True(t, afterMat.StockCommitted.Equal(beforeMat.StockCommitted))
	assert.True(t, afterOrder.Received.Equal(beforeOrder.Received))
	assert.Equal(t, beforeOrder.Status, afterOrder.Status)
}

func TestCancelacion_SegundaVezSeRechazaSinEfectos(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 10, 1)
	rec := f.receive(t, order.ID, 10)
	out, err := f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{
		MaterialID: f.mat.ID, Quantity: q(4), Reference: "Torre 2", UserID: testUser,
	})
	require.NoError(t, err)

	_, err = f.engine.CancelConsumption(f.ctx, inventory.CancelConsumptionCommand{ConsumptionID: out.ID})
	require.NoError(t, err)
	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID})
	require.NoError(t, err)
	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID})
	require.NoError(t, err)

	mat := f.material(t)
	entries := len(f.ledger(t))

	_, err = f.engine.CancelConsumption(f.ctx, inventory.CancelConsumptionCommand{ConsumptionID: out.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	again := f.material(t)
	assert.True(t, again.StockPhysical.Equal(mat.StockPhysical))
	assert.True(t, again.StockCommitted.Equal(mat.StockCommitted))
	assert.Len(t, f.ledger(t), entries)
}

func TestHistorial_CompletoYCuadraConContadores(t *testing.T) {
	f := newFixture(t)
	initial := f.material(t)
	ops := 0

	o1 := f.buy(t, 100, 10)
	ops++
	r1 := f.receive(t, o1.ID, 60)
	ops++
	f.receive(t, o1.ID, 40)
	ops++
	o2 := f.buy(t, 25, 12)
	ops++
	s1, err := f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: f.mat.ID, Quantity: q(30), Reference: "Obra Norte"})
	require.NoError(t, err)
	ops++
	_, err = f.engine.CancelConsumption(f.ctx, inventory.CancelConsumptionCommand{ConsumptionID: s1.ID})
	require.NoError(t, err)
	ops++
	_, err = f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: f.mat.ID, Quantity: q(15), Reference: "Obra Sur"})
	require.NoError(t, err)
	ops++
	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: qp(80), Justification: "merma"})
	require.NoError(t, err)
	ops++
	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: o2.ID})
	require.NoError(t, err)
	ops++

	// Operaciones rechazadas no dejan historial.
	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: r1.ID + 100})
	require.ErrorIs(t, err, domain.ErrNotFound)

	entries := f.ledger(t)
	require.Len(t, entries, ops)

	physical, committed := decimal.Zero, decimal.Zero
	for _, e := range entries {
		physical = physical.Add(e.PhysicalDelta())
		committed = committed.Add(e.CommittedDelta())
		assert.NotEmpty(t, e.OperationID)
	}
	final := f.material(t)
	assert.True(t, physical.Equal(final.StockPhysical.Sub(initial.StockPhysical)))
	assert.True(t, committed.Equal(final.StockCommitted.Sub(initial.StockCommitted)))
	assert.False(t, final.StockPhysical.IsNegative())
	assert.False(t, final.StockCommitted.IsNegative())
	assertCounters(t, final, 80, 0)
}

// ── Rechazos ──────────────────────────────────────────────────────────────────

func TestCreatePurchase_Validaciones(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		cmd  inventory.CreatePurchaseCommand
		want error
	}{
		{"sin material", inventory.CreatePurchaseCommand{Quantity: q(1), UnitPrice: q(1)}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.CreatePurchaseCommand{MaterialID: f.mat.ID, UnitPrice: q(1)}, domain.ErrInvalidQuantity},
		{"precio negativo", inventory.CreatePurchaseCommand{MaterialID: f.mat.ID, Quantity: q(1), UnitPrice: q(-1)}, domain.ErrInvalidQuantity},
		{"material inexistente", inventory.CreatePurchaseCommand{MaterialID: 999, Quantity: q(1), UnitPrice: q(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.CreatePurchase(f.ctx, tc.cmd)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assertCounters(t, f.material(t), 0, 0)
}

func TestEscalaDecimal_RechazaValoresNoAlmacenables(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 10, 1)
	f.receive(t, order.ID, 5)
	ledgerBefore := len(f.ledger(t))

	tiny := decimal.RequireFromString("0.0004")
	_, err := f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{MaterialID: f.mat.ID, Quantity: tiny, UnitPrice: q(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{
		MaterialID: f.mat.ID, Quantity: q(1), UnitPrice: decimal.RequireFromString("0.004"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: order.ID, Quantity: decimal.RequireFromString("1.0005")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: f.mat.ID, Quantity: tiny, Reference: "Obra"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	physical := decimal.RequireFromString("4.1234")
	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: &physical, Justification: "conteo"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewThreshold: &physical})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assertCounters(t, f.material(t), 5, 5)
	assert.Len(t, f.ledger(t), ledgerBefore)

	// los ceros a la derecha no cuentan como decimales
	p, err := f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{
		MaterialID: f.mat.ID, Quantity: decimal.RequireFromString("2.5000"), UnitPrice: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	assert.True(t, p.Total.Equal(decimal.RequireFromString("0.25")))
}

func TestMaterialInactivo_RechazaCompraYSalida(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 10, 1)
	f.receive(t, order.ID, 5)

	inactive := f.store.SeedMaterial(&entity.Material{Name: "Yeso", Active: false, StockPhysical: q(10)})
	_, err := f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{MaterialID: inactive.ID, Quantity: q(1), UnitPrice: q(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: inactive.ID, Quantity: q(1), Reference: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateReceipt_Rechazos(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 100, 10)
	f.receive(t, order.ID, 60)

	_, err := f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: order.ID, Quantity: q(41)})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Contains(t, err.Error(), "pendiente (40)")

	_, err = f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: 404, Quantity: q(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: order.ID, Quantity: q(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	f.receive(t, order.ID, 40)
	_, err = f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: order.ID, Quantity: q(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "compra completada")

	other := f.buy(t, 5, 1)
	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: other.ID})
	require.NoError(t, err)
	_, err = f.engine.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: other.ID, Quantity: q(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "compra cancelada")
}

func TestCancelPurchase_CompletadaConEntradasActivas(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 10, 1)
	rec := f.receive(t, order.ID, 10)

	_, err := f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID})
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)

	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusOpen, f.purchase(t, order.ID).Status)

	_, err = f.engine.CancelPurchase(f.ctx, inventory.CancelPurchaseCommand{PurchaseOrderID: order.ID})
	require.NoError(t, err)
	assertCounters(t, f.material(t), 0, 0)
}

func TestCreateConsumption_Rechazos(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: f.mat.ID, Quantity: q(1), Reference: "Obra"})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Contains(t, err.Error(), "Disponible: 0")

	_, err = f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: f.mat.ID, Quantity: q(1), Reference: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.CreateConsumption(f.ctx, inventory.CreateConsumptionCommand{MaterialID: 77, Quantity: q(1), Reference: "Obra"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjust_Variantes(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: qp(-1), Justification: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewThreshold: qp(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	m, err := f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewThreshold: qp(20)})
	require.NoError(t, err)
	assert.True(t, m.ReorderThreshold.Equal(q(20)))
	assert.Empty(t, f.ledger(t), "el stock mínimo no genera historial")

	_, err = f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: qp(0), Justification: "conteo sin cambios"})
	require.NoError(t, err)
	entries := f.ledger(t)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Quantity.IsZero())
}

func TestCancelReceipt_ClampAlRevertir(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 10, 1)
	rec := f.receive(t, order.ID, 10)

	// Un ajuste deja el físico por debajo de lo recibido.
	_, err := f.engine.Adjust(f.ctx, inventory.AdjustCommand{MaterialID: f.mat.ID, NewPhysical: qp(4), Justification: "robo"})
	require.NoError(t, err)

	_, err = f.engine.CancelReceipt(f.ctx, inventory.CancelReceiptCommand{ReceiptID: rec.ID})
	require.NoError(t, err)
	assertCounters(t, f.material(t), 0, 10)
}

// ── Transacciones ─────────────────────────────────────────────────────────────

var errLedgerDown = errors.New("historial no disponible")

type brokenLedger struct{ repository.LedgerRepository }

func (brokenLedger) Append(context.Context, *entity.LedgerEntry) error { return errLedgerDown }

// brokenLedgerTx inyecta un historial que falla al agregar.
type brokenLedgerTx struct{ *memory.Store }

func (b brokenLedgerTx) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	return b.Store.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		r.Ledger = brokenLedger{r.Ledger}
		return fn(ctx, r)
	})
}

func TestFalloDelHistorial_RevierteTodo(t *testing.T) {
	f := newFixture(t)
	order := f.buy(t, 100, 10)

	broken := inventory.NewEngine(brokenLedgerTx{f.store}, inventory.EngineConfig{
		Now: func() time.Time { return fixedNow }, Logger: zerolog.Nop(),
	})

	_, err := broken.CreateReceipt(f.ctx, inventory.CreateReceiptCommand{PurchaseOrderID: order.ID, Quantity: q(60)})
	require.ErrorIs(t, err, errLedgerDown)

	assertCounters(t, f.material(t), 0, 100)
	p := f.purchase(t, order.ID)
	assert.True(t, p.Received.IsZero())
	assert.Equal(t, entity.PurchaseStatusOpen, p.Status)

	receipts, total, err := f.engine.ListReceipts(f.ctx, repository.ReceiptFilter{})
	require.NoError(t, err)
	assert.Empty(t, receipts)
	assert.Equal(t, 0, total)
	assert.Len(t, f.ledger(t), 1)

	// El folio no se consumió.
	rec := f.receive(t, order.ID, 60)
	assert.Equal(t, "ENT-20240115-001", rec.Folio)
}

func TestComprasConcurrentes_SinPerdidaNiFoliosDuplicados(t *testing.T) {
	f := newFixture(t)
	const n = 25

	var wg sync.WaitGroup
	folios := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.engine.CreatePurchase(f.ctx, inventory.CreatePurchaseCommand{
				MaterialID: f.mat.ID, Quantity: q(2), UnitPrice: q(1),
			})
			if assert.NoError(t, err) {
				folios <- p.Folio
			}
		}()
	}
	wg.Wait()
	close(folios)

	seen := map[string]bool{}
	for fo := range folios {
		assert.False(t, seen[fo], "folio duplicado %s", fo)
		seen[fo] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("COM-20240115-%03d", i)])
	}
	assertCounters(t, f.material(t), 0, 2*n)
}

func TestFolio_UsaLaZonaHorariaDelMotor(t *testing.T) {
	store := memory.NewStore()
	mat := store.SeedMaterial(&entity.Material{Name: "Grava", Active: true})
	loc := time.FixedZone("CST", -6*60*60)

	engine := inventory.NewEngine(store, inventory.EngineConfig{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC) },
		Logger:   zerolog.Nop(),
	})
	p, err := engine.CreatePurchase(context.Background(), inventory.CreatePurchaseCommand{MaterialID: mat.ID, Quantity: q(1), UnitPrice: q(1)})
	require.NoError(t, err)
	assert.Equal(t, "COM-20240115-001", p.Folio)
}
