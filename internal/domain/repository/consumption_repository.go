package repository

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// ConsumptionFilter filtros del listado de salidas.
type ConsumptionFilter struct {
	Status     string
	MaterialID int64
	Limit      int
	Offset     int
}

// ConsumptionRepository define el puerto de persistencia para salidas.
type ConsumptionRepository interface {
	Create(ctx context.Context, s *entity.Consumption) error
	GetByID(ctx context.Context, id int64) (*entity.Consumption, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Consumption, error)
	UpdateStatus(ctx context.Context, s *entity.Consumption) error
	List(ctx context.Context, f ConsumptionFilter) ([]*entity.Consumption, int, error)
	MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error)
}
