package repository

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// MaterialFilter filtros del listado de materiales.
type MaterialFilter struct {
	ActiveOnly bool
	Search     string // coincide con código o nombre
	Limit      int
	Offset     int
}

// MaterialRepository define el puerto de persistencia para Material (DIP).
// Los métodos de lectura devuelven nil, nil si el material no existe.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id int64) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	// GetForUpdate bloquea la fila del material (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Material, error)
	// UpdateStock persiste ambos contadores y el stock mínimo.
	UpdateStock(ctx context.Context, m *entity.Material) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, f MaterialFilter) ([]*entity.Material, int, error)
	// ListBelowThreshold materiales activos cuyo disponible es menor al stock mínimo.
	ListBelowThreshold(ctx context.Context) ([]*entity.Material, error)
}
