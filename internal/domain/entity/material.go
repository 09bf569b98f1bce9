package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material es la raíz del inventario: identidad y contadores de stock de un insumo de obra.
// StockPhysical es lo que hay en almacén; StockCommitted lo pedido y aún no recibido ("stock virtual").
// Solo los gestores de compras, entradas, salidas y ajustes modifican los contadores.
type Material struct {
	ID               int64           `db:"id"`
	Code             string          `db:"codigo"`
	Name             string          `db:"nombre"`
	Unit             string          `db:"unidad"`
	StockPhysical    decimal.Decimal `db:"stock_fisico"`
	StockCommitted   decimal.Decimal `db:"stock_virtual"`
	ReorderThreshold decimal.Decimal `db:"stock_minimo"`
	Active           bool            `db:"activo"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// Available devuelve el stock disponible: físico + virtual.
func (m *Material) Available() decimal.Decimal {
	return m.StockPhysical.Add(m.StockCommitted)
}

// BelowThreshold indica si el disponible quedó por debajo del stock mínimo.
func (m *Material) BelowThreshold() bool {
	return m.ReorderThreshold.GreaterThan(decimal.Zero) && m.Available().LessThan(m.ReorderThreshold)
}

// Clone devuelve una copia independiente.
func (m *Material) Clone() *Material {
	c := *m
	return &c
}
