package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	domaininv "github.com/jhoicas/obrica-api/internal/domain/inventory"
)

// AdjustCommand corrige el stock físico a un valor absoluto y/o el stock mínimo.
// Cambiar el físico exige justificación y deja un registro "ajuste" en el historial;
// el stock mínimo es metadato y no genera historial.
type AdjustCommand struct {
	MaterialID    int64
	NewPhysical   *decimal.Decimal
	NewThreshold  *decimal.Decimal
	Justification string
	UserID        string
}

func (c AdjustCommand) actor() string { return c.UserID }

func (c AdjustCommand) validate() error {
	if c.MaterialID <= 0 {
		return fmt.Errorf("%w: material_id es obligatorio", domain.ErrInvalidInput)
	}
	if c.NewPhysical == nil && c.NewThreshold == nil {
		return fmt.Errorf("%w: debe indicar stock físico o stock mínimo", domain.ErrInvalidInput)
	}
	if c.NewPhysical != nil {
		if c.NewPhysical.IsNegative() {
			return fmt.Errorf("%w: el stock físico no puede ser negativo", domain.ErrInvalidQuantity)
		}
		if !domaininv.FitsScale(*c.NewPhysical, domaininv.QuantityScale) {
			return fmt.Errorf("%w: el stock físico admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
		}
		if strings.TrimSpace(c.Justification) == "" {
			return fmt.Errorf("%w: el motivo del ajuste es obligatorio", domain.ErrMissingJustification)
		}
	}
	if c.NewThreshold != nil {
		if c.NewThreshold.IsNegative() {
			return fmt.Errorf("%w: el stock mínimo no puede ser negativo", domain.ErrInvalidQuantity)
		}
		if !domaininv.FitsScale(*c.NewThreshold, domaininv.QuantityScale) {
			return fmt.Errorf("%w: el stock mínimo admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
		}
	}
	return nil
}

func (c AdjustCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.Material, error) {
	mat, err := lockMaterial(ctx, r, c.MaterialID)
	if err != nil {
		return nil, err
	}

	before := snapshot(mat)
	if c.NewThreshold != nil {
		mat.ReorderThreshold = *c.NewThreshold
	}
	var delta decimal.Decimal
	if c.NewPhysical != nil {
		delta = c.NewPhysical.Sub(mat.StockPhysical)
		mat.StockPhysical = *c.NewPhysical
	}
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	if c.NewPhysical != nil {
		note := "Ajuste manual: " + strings.TrimSpace(c.Justification)
		if err := r.Ledger.Append(ctx, ledgerEntry(op, mat, before, entity.LedgerManualAdjustment, nil, delta, note)); err != nil {
			return nil, err
		}
	}
	return mat, nil
}

// Adjust aplica un ajuste manual al material.
func (e *Engine) Adjust(ctx context.Context, in AdjustCommand) (*entity.Material, error) {
	mat, err := execute[*entity.Material](ctx, e, in)
	if err != nil {
		return nil, err
	}
	ev := e.log.Info().Int64("material_id", mat.ID).Str("stock_fisico", mat.StockPhysical.String())
	if in.NewThreshold != nil {
		ev = ev.Str("stock_minimo", mat.ReorderThreshold.String())
	}
	ev.Msg("ajuste aplicado")
	return mat, nil
}
