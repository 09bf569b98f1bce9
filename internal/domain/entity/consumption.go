package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consumption es una salida de almacén hacia una obra o responsable (Reference, obligatoria).
type Consumption struct {
	ID         int64           `db:"id"`
	Folio      string          `db:"folio"`
	MaterialID int64           `db:"material_id"`
	Quantity   decimal.Decimal `db:"cantidad"`
	Reference  string          `db:"referencia"`
	Date       time.Time       `db:"fecha"`
	Notes      string          `db:"notas"`
	Status     string          `db:"estado"`
	CreatedBy  string          `db:"created_by"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// IsActive indica si la salida sigue vigente.
func (s *Consumption) IsActive() bool {
	return s.Status == MovementStatusActive
}

// Clone devuelve una copia independiente.
func (s *Consumption) Clone() *Consumption {
	c := *s
	return &c
}
