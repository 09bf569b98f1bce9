package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	domaininv "github.com/jhoicas/obrica-api/internal/domain/inventory"
)

// DefaultUnit unidad de medida cuando no se indica.
const DefaultUnit = "PZA"

// MaterialUseCase casos de uso del catálogo de materiales (alta y baja lógica).
// Los contadores de stock solo los modifica el motor de inventario.
type MaterialUseCase struct {
	tx  inventory.TxRunner
	now func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(tx inventory.TxRunner) *MaterialUseCase {
	return &MaterialUseCase{tx: tx, now: time.Now}
}

// RegisterMaterialInput datos de alta de un material.
type RegisterMaterialInput struct {
	Code             string
	Name             string
	Unit             string
	ReorderThreshold decimal.Decimal
}

// Register da de alta un material activo con ambos contadores en cero.
func (uc *MaterialUseCase) Register(ctx context.Context, in RegisterMaterialInput) (*entity.Material, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.ToUpper(strings.TrimSpace(in.Unit))
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre del material es obligatorio", domain.ErrInvalidInput)
	}
	if in.ReorderThreshold.IsNegative() {
		return nil, fmt.Errorf("%w: el stock mínimo no puede ser negativo", domain.ErrInvalidQuantity)
	}
	if !domaininv.FitsScale(in.ReorderThreshold, domaininv.QuantityScale) {
		return nil, fmt.Errorf("%w: el stock mínimo admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
	}
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}

	now := uc.now()
	m := &entity.Material{
		Code:             in.Code,
		Name:             in.Name,
		Unit:             in.Unit,
		StockPhysical:    decimal.Zero,
		StockCommitted:   decimal.Zero,
		ReorderThreshold: in.ReorderThreshold,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		if m.Code != "" {
			existing, err := r.Materials.GetByCode(ctx, m.Code)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: ya existe un material con código %s", domain.ErrDuplicate, m.Code)
			}
		}
		return r.Materials.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Deactivate baja lógica: el material deja de aceptar compras y salidas. Nunca se borra.
func (uc *MaterialUseCase) Deactivate(ctx context.Context, id int64) (*entity.Material, error) {
	return uc.setActive(ctx, id, false)
}

// Activate reactiva un material dado de baja.
func (uc *MaterialUseCase) Activate(ctx context.Context, id int64) (*entity.Material, error) {
	return uc.setActive(ctx, id, true)
}

func (uc *MaterialUseCase) setActive(ctx context.Context, id int64, active bool) (*entity.Material, error) {
	var out *entity.Material
	err := uc.tx.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		m, err := r.Materials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: material %d no existe", domain.ErrNotFound, id)
		}
		if m.Active != active {
			if err := r.Materials.SetActive(ctx, id, active); err != nil {
				return err
			}
			m.Active = active
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
