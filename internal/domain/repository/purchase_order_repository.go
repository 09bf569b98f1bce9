package repository

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de compras.
type PurchaseOrderFilter struct {
	Status     string
	MaterialID int64
	Limit      int
	Offset     int
}

// PurchaseOrderRepository define el puerto de persistencia para compras.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, p *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error)
	// Update persiste cantidad recibida y estado.
	Update(ctx context.Context, p *entity.PurchaseOrder) error
	List(ctx context.Context, f PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error)
	MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error)
}
