package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo historial de inventario. Solo INSERT y SELECT: la tabla no admite UPDATE ni DELETE
// (ver trigger en la migración).
type LedgerRepo struct {
	q Querier
}

func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append agrega un movimiento al historial.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO inventario_historial (material_id, tipo, referencia_id, cantidad,
			stock_fisico_anterior, stock_fisico_nuevo, stock_virtual_anterior, stock_virtual_nuevo,
			notas, operacion_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.MaterialID, string(e.Kind), e.ReferenceID, e.Quantity,
		e.PhysicalBefore, e.PhysicalAfter, e.CommittedBefore, e.CommittedAfter,
		e.Notes, e.OperationID, e.CreatedBy, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert historial: %w", err)
	}
	return nil
}

func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	return selectPage[entity.LedgerEntry](ctx, r.q, ledgerListQuery(f), "historial")
}

// ListByMaterial devuelve el kardex completo en orden de inserción.
func (r *LedgerRepo) ListByMaterial(ctx context.Context, materialID int64) ([]*entity.LedgerEntry, error) {
	sql, args, err := builder().Select(ledgerColumns...).From(tableLedger).
		Where(squirrel.Eq{"material_id": materialID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build kardex: %w", err)
	}
	items := make([]*entity.LedgerEntry, 0)
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	return items, nil
}
