package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo persistencia de salidas.
type ConsumptionRepo struct {
	q Querier
}

func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

func (r *ConsumptionRepo) Create(ctx context.Context, s *entity.Consumption) error {
	query := `
		INSERT INTO salidas (folio, material_id, cantidad, referencia, fecha, notas, estado, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		s.Folio, s.MaterialID, s.Quantity, s.Reference, s.Date, s.Notes, s.Status,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert salida: %w", err)
	}
	return nil
}

func (r *ConsumptionRepo) GetByID(ctx context.Context, id int64) (*entity.Consumption, error) {
	return getOne[entity.Consumption](ctx, r.q, tableConsumptions, consumptionColumns, id, false, "salida")
}

func (r *ConsumptionRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Consumption, error) {
	return getOne[entity.Consumption](ctx, r.q, tableConsumptions, consumptionColumns, id, true, "salida for update")
}

func (r *ConsumptionRepo) UpdateStatus(ctx context.Context, s *entity.Consumption) error {
	_, err := r.q.Exec(ctx, `UPDATE salidas SET estado = $2, updated_at = $3 WHERE id = $1`,
		s.ID, s.Status, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update salida: %w", err)
	}
	return nil
}

func (r *ConsumptionRepo) List(ctx context.Context, f repository.ConsumptionFilter) ([]*entity.Consumption, int, error) {
	return selectPage[entity.Consumption](ctx, r.q, consumptionListQuery(f), "salidas")
}

func (r *ConsumptionRepo) MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error) {
	return maxFolioSequence(ctx, r.q, tableConsumptions, dayPrefix)
}
