package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo persistencia de compras.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, p *entity.PurchaseOrder) error {
	query := `
		INSERT INTO compras (folio, material_id, proveedor_id, cantidad, cantidad_recibida, precio_unitario, total,
			fecha, notas, estado, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.Folio, p.MaterialID, p.SupplierID, p.Quantity, p.Received, p.UnitPrice, p.Total,
		p.Date, p.Notes, p.Status, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert compra: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return getOne[entity.PurchaseOrder](ctx, r.q, tablePurchases, purchaseColumns, id, false, "compra")
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return getOne[entity.PurchaseOrder](ctx, r.q, tablePurchases, purchaseColumns, id, true, "compra for update")
}

// Update persiste cantidad recibida y estado; el resto de la compra es inmutable.
func (r *PurchaseOrderRepo) Update(ctx context.Context, p *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		UPDATE compras SET cantidad_recibida = $2, estado = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.Received, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update compra: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	return selectPage[entity.PurchaseOrder](ctx, r.q, purchaseListQuery(f), "compras")
}

func (r *PurchaseOrderRepo) MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error) {
	return maxFolioSequence(ctx, r.q, tablePurchases, dayPrefix)
}
