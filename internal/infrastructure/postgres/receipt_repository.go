package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo persistencia de entradas.
type ReceiptRepo struct {
	q Querier
}

func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

func (r *ReceiptRepo) Create(ctx context.Context, rec *entity.Receipt) error {
	query := `
		INSERT INTO entradas (folio, compra_id, material_id, cantidad, fecha, notas, estado, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rec.Folio, rec.PurchaseOrderID, rec.MaterialID, rec.Quantity, rec.Date, rec.Notes, rec.Status,
		rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert entrada: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id int64) (*entity.Receipt, error) {
	return getOne[entity.Receipt](ctx, r.q, tableReceipts, receiptColumns, id, false, "entrada")
}

func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error) {
	return getOne[entity.Receipt](ctx, r.q, tableReceipts, receiptColumns, id, true, "entrada for update")
}

func (r *ReceiptRepo) UpdateStatus(ctx context.Context, rec *entity.Receipt) error {
	_, err := r.q.Exec(ctx, `UPDATE entradas SET estado = $2, updated_at = $3 WHERE id = $1`,
		rec.ID, rec.Status, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update entrada: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) List(ctx context.Context, f repository.ReceiptFilter) ([]*entity.Receipt, int, error) {
	return selectPage[entity.Receipt](ctx, r.q, receiptListQuery(f), "entradas")
}

// CountActiveByPurchaseOrder cuenta las entradas activas de una compra.
func (r *ReceiptRepo) CountActiveByPurchaseOrder(ctx context.Context, purchaseOrderID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM entradas WHERE compra_id = $1 AND estado = $2`,
		purchaseOrderID, entity.MovementStatusActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entradas activas: %w", err)
	}
	return n, nil
}

func (r *ReceiptRepo) MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error) {
	return maxFolioSequence(ctx, r.q, tableReceipts, dayPrefix)
}
