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

// CreatePurchaseCommand registra una compra: reserva stock virtual por la cantidad pedida.
type CreatePurchaseCommand struct {
	MaterialID int64
	SupplierID *int64
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Date       time.Time // vacía = hoy
	Notes      string
	UserID     string
}

func (c CreatePurchaseCommand) actor() string { return c.UserID }

func (c CreatePurchaseCommand) validate() error {
	if c.MaterialID <= 0 {
		return fmt.Errorf("%w: material_id es obligatorio", domain.ErrInvalidInput)
	}
	if !c.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidQuantity)
	}
	if !c.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: el precio unitario debe ser mayor a 0", domain.ErrInvalidQuantity)
	}
	if !domaininv.FitsScale(c.Quantity, domaininv.QuantityScale) {
		return fmt.Errorf("%w: la cantidad admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
	}
	if !domaininv.FitsScale(c.UnitPrice, domaininv.PriceScale) {
		return fmt.Errorf("%w: el precio unitario admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.PriceScale)
	}
	return nil
}

func (c CreatePurchaseCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.PurchaseOrder, error) {
	mat, err := lockActiveMaterial(ctx, r, c.MaterialID)
	if err != nil {
		return nil, err
	}

	before := snapshot(mat)
	mat.StockCommitted = mat.StockCommitted.Add(c.Quantity)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	f, err := folio.Next(ctx, r.Purchases, folio.PrefixPurchase, op.now)
	if err != nil {
		return nil, err
	}
	order := &entity.PurchaseOrder{
		Folio:      f,
		MaterialID: mat.ID,
		SupplierID: c.SupplierID,
		Quantity:   c.Quantity,
		Received:   decimal.Zero,
		UnitPrice:  c.UnitPrice,
		Total:      c.Quantity.Mul(c.UnitPrice),
		Date:       op.dateOr(c.Date),
		Notes:      strings.TrimSpace(c.Notes),
		Status:     entity.PurchaseStatusOpen,
		CreatedBy:  op.userID,
		CreatedAt:  op.now,
		UpdatedAt:  op.now,
	}
	if err := r.Purchases.Create(ctx, order); err != nil {
		return nil, err
	}

	entry := ledgerEntry(op, mat, before, entity.LedgerPurchase, ref(order.ID), c.Quantity, "Compra "+order.Folio)
	if err := r.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelPurchaseCommand cancela una compra sin entradas activas y libera lo pendiente del stock virtual.
type CancelPurchaseCommand struct {
	PurchaseOrderID int64
	UserID          string
}

func (c CancelPurchaseCommand) actor() string { return c.UserID }

func (c CancelPurchaseCommand) validate() error {
	if c.PurchaseOrderID <= 0 {
		return fmt.Errorf("%w: id de compra inválido", domain.ErrInvalidInput)
	}
	return nil
}

func (c CancelPurchaseCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.PurchaseOrder, error) {
	order, err := r.Purchases.GetForUpdate(ctx, c.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: compra %d no existe", domain.ErrNotFound, c.PurchaseOrderID)
	}
	if order.IsCancelled() {
		return nil, fmt.Errorf("%w: la compra %s ya está cancelada", domain.ErrInvalidState, order.Folio)
	}
	active, err := r.Receipts.CountActiveByPurchaseOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, fmt.Errorf("%w: no se puede cancelar: tiene entradas activas asociadas. Cancele las entradas primero", domain.ErrPreconditionFailed)
	}
	if order.Status != entity.PurchaseStatusOpen {
		return nil, fmt.Errorf("%w: la compra %s no está activa", domain.ErrInvalidState, order.Folio)
	}

	mat, err := lockMaterial(ctx, r, order.MaterialID)
	if err != nil {
		return nil, err
	}

	pending := order.Pending()
	before := snapshot(mat)
	mat.StockCommitted = domaininv.SubClamped(mat.StockCommitted, pending)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	order.Status = entity.PurchaseStatusCancelled
	order.UpdatedAt = op.now
	if err := r.Purchases.Update(ctx, order); err != nil {
		return nil, err
	}

	entry := ledgerEntry(op, mat, before, entity.LedgerPurchaseCancel, ref(order.ID), pending.Neg(), "Cancelación compra "+order.Folio)
	if err := r.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return order, nil
}

// CreatePurchase registra una compra en estado activa.
func (e *Engine) CreatePurchase(ctx context.Context, in CreatePurchaseCommand) (*entity.PurchaseOrder, error) {
	order, err := execute[*entity.PurchaseOrder](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("folio", order.Folio).
		Int64("material_id", order.MaterialID).
		Str("cantidad", order.Quantity.String()).
		Msg("compra registrada")
	return order, nil
}

// CancelPurchase cancela una compra activa sin entradas vigentes.
func (e *Engine) CancelPurchase(ctx context.Context, in CancelPurchaseCommand) (*entity.PurchaseOrder, error) {
	order, err := execute[*entity.PurchaseOrder](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("folio", order.Folio).Msg("compra cancelada")
	return order, nil
}
