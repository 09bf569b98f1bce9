package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra.
const (
	PurchaseStatusOpen      = "activa"
	PurchaseStatusFulfilled = "completada"
	PurchaseStatusCancelled = "cancelada"
)

// PurchaseOrder es una compra (pedido) de material. Received acumula lo recibido por entradas activas.
// Invariante: 0 <= Received <= Quantity; completada si y solo si Received == Quantity.
type PurchaseOrder struct {
	ID         int64           `db:"id"`
	Folio      string          `db:"folio"`
	MaterialID int64           `db:"material_id"`
	SupplierID *int64          `db:"proveedor_id"`
	Quantity   decimal.Decimal `db:"cantidad"`
	Received   decimal.Decimal `db:"cantidad_recibida"`
	UnitPrice  decimal.Decimal `db:"precio_unitario"`
	Total      decimal.Decimal `db:"total"`
	Date       time.Time       `db:"fecha"`
	Notes      string          `db:"notas"`
	Status     string          `db:"estado"`
	CreatedBy  string          `db:"created_by"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Pending devuelve lo que falta por recibir.
func (p *PurchaseOrder) Pending() decimal.Decimal {
	return p.Quantity.Sub(p.Received)
}

// IsCancelled indica si la compra ya fue cancelada (inmutable).
func (p *PurchaseOrder) IsCancelled() bool {
	return p.Status == PurchaseStatusCancelled
}

// RecomputeStatus deriva activa/completada de lo recibido. Una compra cancelada no cambia.
func (p *PurchaseOrder) RecomputeStatus() {
	if p.IsCancelled() {
		return
	}
	if p.Received.Equal(p.Quantity) {
		p.Status = PurchaseStatusFulfilled
		return
	}
	p.Status = PurchaseStatusOpen
}

// Clone devuelve una copia independiente.
func (p *PurchaseOrder) Clone() *PurchaseOrder {
	c := *p
	if p.SupplierID != nil {
		id := *p.SupplierID
		c.SupplierID = &id
	}
	return &c
}
