package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind tipo de evento del historial de inventario.
type LedgerKind string

const (
	LedgerPurchase          LedgerKind = "compra"
	LedgerReceipt           LedgerKind = "entrada"
	LedgerConsumption       LedgerKind = "salida"
	LedgerPurchaseCancel    LedgerKind = "cancelacion_compra"
	LedgerReceiptCancel     LedgerKind = "cancelacion_entrada"
	LedgerConsumptionCancel LedgerKind = "cancelacion_salida"
	LedgerManualAdjustment  LedgerKind = "ajuste"
)

// Valid indica si el tipo pertenece al catálogo.
func (k LedgerKind) Valid() bool {
	switch k {
	case LedgerPurchase, LedgerReceipt, LedgerConsumption,
		LedgerPurchaseCancel, LedgerReceiptCancel, LedgerConsumptionCancel,
		LedgerManualAdjustment:
		return true
	}
	return false
}

// LedgerEntry registro inmutable de inventario_historial. Una fila por cada mutación de stock,
// con las fotos antes/después de ambos contadores.
// ReferenceID apunta a la compra, entrada o salida que lo originó (nil en ajustes).
type LedgerEntry struct {
	ID              int64           `db:"id"`
	MaterialID      int64           `db:"material_id"`
	Kind            LedgerKind      `db:"tipo"`
	ReferenceID     *int64          `db:"referencia_id"`
	Quantity        decimal.Decimal `db:"cantidad"`
	PhysicalBefore  decimal.Decimal `db:"stock_fisico_anterior"`
	PhysicalAfter   decimal.Decimal `db:"stock_fisico_nuevo"`
	CommittedBefore decimal.Decimal `db:"stock_virtual_anterior"`
	CommittedAfter  decimal.Decimal `db:"stock_virtual_nuevo"`
	Notes           string          `db:"notas"`
	OperationID     string          `db:"operacion_id"`
	CreatedBy       string          `db:"created_by"`
	CreatedAt       time.Time       `db:"created_at"`
}

// PhysicalDelta cambio aplicado al stock físico.
func (e *LedgerEntry) PhysicalDelta() decimal.Decimal {
	return e.PhysicalAfter.Sub(e.PhysicalBefore)
}

// CommittedDelta cambio aplicado al stock virtual.
func (e *LedgerEntry) CommittedDelta() decimal.Decimal {
	return e.CommittedAfter.Sub(e.CommittedBefore)
}

// Clone devuelve una copia independiente.
func (e *LedgerEntry) Clone() *LedgerEntry {
	c := *e
	if e.ReferenceID != nil {
		id := *e.ReferenceID
		c.ReferenceID = &id
	}
	return &c
}
