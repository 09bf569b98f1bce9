package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de persistencia para materiales. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un material. El código vacío se guarda como NULL (el índice único lo ignora).
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materiales (codigo, nombre, unidad, stock_fisico, stock_virtual, stock_minimo, activo, created_at, updated_at)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.Code, m.Name, m.Unit, m.StockPhysical, m.StockCommitted, m.ReorderThreshold,
		m.Active, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id int64) (*entity.Material, error) {
	return getOne[entity.Material](ctx, r.q, tableMaterials, materialColumns, id, false, "material")
}

// GetByCode obtiene un material por código exacto.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	sql, args, err := builder().Select(materialColumns...).From(tableMaterials).
		Where(squirrel.Eq{"codigo": code}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get material by code: %w", err)
	}
	var m entity.Material
	if err := pgxscan.Get(ctx, r.q, &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material by code: %w", err)
	}
	return &m, nil
}

// GetForUpdate obtiene el material con bloqueo de fila (FOR UPDATE).
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Material, error) {
	return getOne[entity.Material](ctx, r.q, tableMaterials, materialColumns, id, true, "material for update")
}

// UpdateStock persiste stock físico, virtual y mínimo.
func (r *MaterialRepo) UpdateStock(ctx context.Context, m *entity.Material) error {
	_, err := r.q.Exec(ctx, `
		UPDATE materiales SET stock_fisico = $2, stock_virtual = $3, stock_minimo = $4, updated_at = $5
		WHERE id = $1`,
		m.ID, m.StockPhysical, m.StockCommitted, m.ReorderThreshold, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update material stock: %w", err)
	}
	return nil
}

// SetActive activa o desactiva el material.
func (r *MaterialRepo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.q.Exec(ctx, `UPDATE materiales SET activo = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set material active: %w", err)
	}
	return nil
}

// List lista materiales con filtros y paginación.
func (r *MaterialRepo) List(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, int, error) {
	return selectPage[entity.Material](ctx, r.q, materialListQuery(f), "materiales")
}

// ListBelowThreshold materiales activos con disponible (físico + virtual) menor al mínimo.
func (r *MaterialRepo) ListBelowThreshold(ctx context.Context) ([]*entity.Material, error) {
	sql, args, err := belowThresholdQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build below threshold: %w", err)
	}
	items := make([]*entity.Material, 0)
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list below threshold: %w", err)
	}
	return items, nil
}

func belowThresholdQuery() squirrel.SelectBuilder {
	return builder().Select(materialColumns...).From(tableMaterials).
		Where(squirrel.Eq{"activo": true}).
		Where(squirrel.Gt{"stock_minimo": 0}).
		Where("stock_fisico + stock_virtual < stock_minimo").
		OrderBy("nombre")
}
