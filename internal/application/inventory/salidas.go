package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/folio"
	domaininv "github.com/jhoicas/obrica-api/internal/domain/inventory"
)

// CreateConsumptionCommand descuenta stock físico hacia una obra o responsable.
type CreateConsumptionCommand struct {
	MaterialID int64
	Quantity   decimal.Decimal
	Reference  string
	Date       time.Time
	Notes      string
	UserID     string
}

func (c CreateConsumptionCommand) actor() string { return c.UserID }

func (c CreateConsumptionCommand) validate() error {
	if c.MaterialID <= 0 {
		return fmt.Errorf("%w: material_id es obligatorio", domain.ErrInvalidInput)
	}
	if !c.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidQuantity)
	}
	if !domaininv.FitsScale(c.Quantity, domaininv.QuantityScale) {
		return fmt.Errorf("%w: la cantidad admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
	}
	if strings.TrimSpace(c.Reference) == "" {
		return fmt.Errorf("%w: la referencia es obligatoria", domain.ErrInvalidInput)
	}
	return nil
}

func (c CreateConsumptionCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.Consumption, error) {
	mat, err := lockActiveMaterial(ctx, r, c.MaterialID)
	if err != nil {
		return nil, err
	}
	if c.Quantity.GreaterThan(mat.StockPhysical) {
		return nil, fmt.Errorf("%w: stock físico insuficiente. Disponible: %s", domain.ErrInvalidQuantity, mat.StockPhysical)
	}

	before := snapshot(mat)
	mat.StockPhysical = mat.StockPhysical.Sub(c.Quantity)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	f, err := folio.Next(ctx, r.Consumptions, folio.PrefixConsumption, op.now)
	if err != nil {
		return nil, err
	}
	out := &entity.Consumption{
		Folio:      f,
		MaterialID: mat.ID,
		Quantity:   c.Quantity,
		Reference:  strings.TrimSpace(c.Reference),
		Date:       op.dateOr(c.Date),
		Notes:      strings.TrimSpace(c.Notes),
		Status:     entity.MovementStatusActive,
		CreatedBy:  op.userID,
		CreatedAt:  op.now,
		UpdatedAt:  op.now,
	}
	if err := r.Consumptions.Create(ctx, out); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Salida %s - %s", out.Folio, out.Reference)
	if err := r.Ledger.Append(ctx, ledgerEntry(op, mat, before, entity.LedgerConsumption, ref(out.ID), c.Quantity.Neg(), note)); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelConsumptionCommand devuelve al almacén lo descontado por una salida.
type CancelConsumptionCommand struct {
	ConsumptionID int64
	UserID        string
}

func (c CancelConsumptionCommand) actor() string { return c.UserID }

func (c CancelConsumptionCommand) validate() error {
	if c.ConsumptionID <= 0 {
		return fmt.Errorf("%w: id de salida inválido", domain.ErrInvalidInput)
	}
	return nil
}

func (c CancelConsumptionCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.Consumption, error) {
	out, err := r.Consumptions.GetForUpdate(ctx, c.ConsumptionID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: salida %d no existe", domain.ErrNotFound, c.ConsumptionID)
	}
	if !out.IsActive() {
		return nil, fmt.Errorf("%w: la salida %s ya está cancelada", domain.ErrInvalidState, out.Folio)
	}

	mat, err := lockMaterial(ctx, r, out.MaterialID)
	if err != nil {
		return nil, err
	}

	before := snapshot(mat)
	mat.StockPhysical = mat.StockPhysical.Add(out.Quantity)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	out.Status = entity.MovementStatusCancelled
	out.UpdatedAt = op.now
	if err := r.Consumptions.UpdateStatus(ctx, out); err != nil {
		return nil, err
	}

	entry := ledgerEntry(op, mat, before, entity.LedgerConsumptionCancel, ref(out.ID), out.Quantity, "Cancelación salida "+out.Folio)
	if err := r.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConsumption registra una salida de almacén.
func (e *Engine) CreateConsumption(ctx context.Context, in CreateConsumptionCommand) (*entity.Consumption, error) {
	out, err := execute[*entity.Consumption](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("folio", out.Folio).
		Int64("material_id", out.MaterialID).
		Str("cantidad", out.Quantity.String()).
		Msg("salida registrada")
	return out, nil
}

// CancelConsumption cancela una salida activa.
func (e *Engine) CancelConsumption(ctx context.Context, in CancelConsumptionCommand) (*entity.Consumption, error) {
	out, err := execute[*entity.Consumption](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("folio", out.Folio).Msg("salida cancelada")
	return out, nil
}
