package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de entradas y salidas: activa -> cancelada, sin retorno.
const (
	MovementStatusActive    = "activa"
	MovementStatusCancelled = "cancelada"
)

// Receipt es una entrada de almacén contra una compra activa.
// MaterialID se copia de la compra al crearla.
type Receipt struct {
	ID              int64           `db:"id"`
	Folio           string          `db:"folio"`
	PurchaseOrderID int64           `db:"compra_id"`
	MaterialID      int64           `db:"material_id"`
	Quantity        decimal.Decimal `db:"cantidad"`
	Date            time.Time       `db:"fecha"`
	Notes           string          `db:"notas"`
	Status          string          `db:"estado"`
	CreatedBy       string          `db:"created_by"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// IsActive indica si la entrada sigue vigente.
func (r *Receipt) IsActive() bool {
	return r.Status == MovementStatusActive
}

// Clone devuelve una copia independiente.
func (r *Receipt) Clone() *Receipt {
	c := *r
	return &c
}
