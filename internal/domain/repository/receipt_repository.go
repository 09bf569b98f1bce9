package repository

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// ReceiptFilter filtros del listado de entradas.
type ReceiptFilter struct {
	Status          string
	PurchaseOrderID int64
	MaterialID      int64
	Limit           int
	Offset          int
}

// ReceiptRepository define el puerto de persistencia para entradas.
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id int64) (*entity.Receipt, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error)
	UpdateStatus(ctx context.Context, r *entity.Receipt) error
	List(ctx context.Context, f ReceiptFilter) ([]*entity.Receipt, int, error)
	CountActiveByPurchaseOrder(ctx context.Context, purchaseOrderID int64) (int, error)
	MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error)
}
