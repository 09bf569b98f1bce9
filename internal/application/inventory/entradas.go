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

// CreateReceiptCommand recibe material contra una compra activa: pasa stock virtual a físico.
type CreateReceiptCommand struct {
	PurchaseOrderID int64
	Quantity        decimal.Decimal
	Date            time.Time
	Notes           string
	UserID          string
}

func (c CreateReceiptCommand) actor() string { return c.UserID }

func (c CreateReceiptCommand) validate() error {
	if c.PurchaseOrderID <= 0 {
		return fmt.Errorf("%w: compra_id es obligatorio", domain.ErrInvalidInput)
	}
	if !c.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidQuantity)
	}
	if !domaininv.FitsScale(c.Quantity, domaininv.QuantityScale) {
		return fmt.Errorf("%w: la cantidad admite hasta %d decimales", domain.ErrInvalidQuantity, domaininv.QuantityScale)
	}
	return nil
}

func (c CreateReceiptCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.Receipt, error) {
	order, err := r.Purchases.GetForUpdate(ctx, c.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: compra %d no existe", domain.ErrNotFound, c.PurchaseOrderID)
	}
	if order.Status != entity.PurchaseStatusOpen {
		return nil, fmt.Errorf("%w: la compra %s no está activa", domain.ErrInvalidState, order.Folio)
	}
	pending := order.Pending()
	if c.Quantity.GreaterThan(pending) {
		return nil, fmt.Errorf("%w: no se puede recibir más de lo pendiente (%s)", domain.ErrInvalidQuantity, pending)
	}

	mat, err := lockMaterial(ctx, r, order.MaterialID)
	if err != nil {
		return nil, err
	}

	before := snapshot(mat)
	mat.StockCommitted = domaininv.SubClamped(mat.StockCommitted, c.Quantity)
	mat.StockPhysical = mat.StockPhysical.Add(c.Quantity)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	order.Received = order.Received.Add(c.Quantity)
	order.RecomputeStatus()
	order.UpdatedAt = op.now
	if err := r.Purchases.Update(ctx, order); err != nil {
		return nil, err
	}

	f, err := folio.Next(ctx, r.Receipts, folio.PrefixReceipt, op.now)
	if err != nil {
		return nil, err
	}
	rec := &entity.Receipt{
		Folio:           f,
		PurchaseOrderID: order.ID,
		MaterialID:      order.MaterialID,
		Quantity:        c.Quantity,
		Date:            op.dateOr(c.Date),
		Notes:           strings.TrimSpace(c.Notes),
		Status:          entity.MovementStatusActive,
		CreatedBy:       op.userID,
		CreatedAt:       op.now,
		UpdatedAt:       op.now,
	}
	if err := r.Receipts.Create(ctx, rec); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Entrada %s de compra %s", rec.Folio, order.Folio)
	if err := r.Ledger.Append(ctx, ledgerEntry(op, mat, before, entity.LedgerReceipt, ref(rec.ID), c.Quantity, note)); err != nil {
		return nil, err
	}
	return rec, nil
}

// CancelReceiptCommand revierte exactamente una entrada activa.
type CancelReceiptCommand struct {
	ReceiptID int64
	UserID    string
}

func (c CancelReceiptCommand) actor() string { return c.UserID }

func (c CancelReceiptCommand) validate() error {
	if c.ReceiptID <= 0 {
		return fmt.Errorf("%w: id de entrada inválido", domain.ErrInvalidInput)
	}
	return nil
}

func (c CancelReceiptCommand) apply(ctx context.Context, op *operation, r Repos) (*entity.Receipt, error) {
	rec, err := r.Receipts.GetForUpdate(ctx, c.ReceiptID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: entrada %d no existe", domain.ErrNotFound, c.ReceiptID)
	}
	if !rec.IsActive() {
		return nil, fmt.Errorf("%w: la entrada %s ya está cancelada", domain.ErrInvalidState, rec.Folio)
	}

	order, err := r.Purchases.GetForUpdate(ctx, rec.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: compra %d de la entrada %s no existe", domain.ErrNotFound, rec.PurchaseOrderID, rec.Folio)
	}

	mat, err := lockMaterial(ctx, r, rec.MaterialID)
	if err != nil {
		return nil, err
	}

	before := snapshot(mat)
	mat.StockCommitted = mat.StockCommitted.Add(rec.Quantity)
	mat.StockPhysical = domaininv.SubClamped(mat.StockPhysical, rec.Quantity)
	mat.UpdatedAt = op.now
	if err := r.Materials.UpdateStock(ctx, mat); err != nil {
		return nil, err
	}

	order.Received = domaininv.SubClamped(order.Received, rec.Quantity)
	order.RecomputeStatus()
	order.UpdatedAt = op.now
	if err := r.Purchases.Update(ctx, order); err != nil {
		return nil, err
	}

	rec.Status = entity.MovementStatusCancelled
	rec.UpdatedAt = op.now
	if err := r.Receipts.UpdateStatus(ctx, rec); err != nil {
		return nil, err
	}

	entry := ledgerEntry(op, mat, before, entity.LedgerReceiptCancel, ref(rec.ID), rec.Quantity.Neg(), "Cancelación entrada "+rec.Folio)
	if err := r.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateReceipt registra una entrada contra una compra activa.
func (e *Engine) CreateReceipt(ctx context.Context, in CreateReceiptCommand) (*entity.Receipt, error) {
	rec, err := execute[*entity.Receipt](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("folio", rec.Folio).
		Int64("compra_id", rec.PurchaseOrderID).
		Str("cantidad", rec.Quantity.String()).
		Msg("entrada registrada")
	return rec, nil
}

// CancelReceipt cancela una entrada y devuelve la compra a activa si corresponde.
func (e *Engine) CancelReceipt(ctx context.Context, in CancelReceiptCommand) (*entity.Receipt, error) {
	rec, err := execute[*entity.Receipt](ctx, e, in)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("folio", rec.Folio).Msg("entrada cancelada")
	return rec, nil
}
