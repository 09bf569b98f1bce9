package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// normalizePage aplica límite por defecto (20), máximo (100) y offset no negativo.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// getOne lee un registro en transacción de solo lectura; NotFound si no existe.
func getOne[T any](ctx context.Context, e *Engine, what string, id int64, get func(ctx context.Context, r Repos) (*T, error)) (*T, error) {
	var out *T
	err := e.tx.ReadOnly(ctx, func(ctx context.Context, r Repos) error {
		v, err := get(ctx, r)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s %d no existe", domain.ErrNotFound, what, id)
	}
	return out, nil
}

// listPage lee una página y el total en transacción de solo lectura.
func listPage[T any](ctx context.Context, e *Engine, list func(ctx context.Context, r Repos) ([]*T, int, error)) ([]*T, int, error) {
	var (
		items []*T
		total int
	)
	err := e.tx.ReadOnly(ctx, func(ctx context.Context, r Repos) error {
		var err error
		items, total, err = list(ctx, r)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*T{}
	}
	return items, total, nil
}

// GetMaterial devuelve un material con sus contadores.
func (e *Engine) GetMaterial(ctx context.Context, id int64) (*entity.Material, error) {
	return getOne(ctx, e, "material", id, func(ctx context.Context, r Repos) (*entity.Material, error) {
		return r.Materials.GetByID(ctx, id)
	})
}

// ListMaterials lista materiales ordenados por nombre.
func (e *Engine) ListMaterials(ctx context.Context, f repository.MaterialFilter) ([]*entity.Material, int, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return listPage(ctx, e, func(ctx context.Context, r Repos) ([]*entity.Material, int, error) {
		return r.Materials.List(ctx, f)
	})
}

// GetPurchase devuelve una compra.
func (e *Engine) GetPurchase(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return getOne(ctx, e, "compra", id, func(ctx context.Context, r Repos) (*entity.PurchaseOrder, error) {
		return r.Purchases.GetByID(ctx, id)
	})
}

// ListPurchases lista compras, más recientes primero.
func (e *Engine) ListPurchases(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return listPage(ctx, e, func(ctx context.Context, r Repos) ([]*entity.PurchaseOrder, int, error) {
		return r.Purchases.List(ctx, f)
	})
}

// GetReceipt devuelve una entrada.
func (e *Engine) GetReceipt(ctx context.Context, id int64) (*entity.Receipt, error) {
	return getOne(ctx, e, "entrada", id, func(ctx context.Context, r Repos) (*entity.Receipt, error) {
		return r.Receipts.GetByID(ctx, id)
	})
}

// ListReceipts lista entradas, filtrables por compra.
func (e *Engine) ListReceipts(ctx context.Context, f repository.ReceiptFilter) ([]*entity.Receipt, int, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return listPage(ctx, e, func(ctx context.Context, r Repos) ([]*entity.Receipt, int, error) {
		return r.Receipts.List(ctx, f)
	})
}

// GetConsumption devuelve una salida.
func (e *Engine) GetConsumption(ctx context.Context, id int64) (*entity.Consumption, error) {
	return getOne(ctx, e, "salida", id, func(ctx context.Context, r Repos) (*entity.Consumption, error) {
		return r.Consumptions.GetByID(ctx, id)
	})
}

// ListConsumptions lista salidas.
func (e *Engine) ListConsumptions(ctx context.Context, f repository.ConsumptionFilter) ([]*entity.Consumption, int, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return listPage(ctx, e, func(ctx context.Context, r Repos) ([]*entity.Consumption, int, error) {
		return r.Consumptions.List(ctx, f)
	})
}

// ListLedger página del historial, más reciente primero.
func (e *Engine) ListLedger(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: tipo de movimiento %q desconocido", domain.ErrInvalidInput, f.Kind)
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return listPage(ctx, e, func(ctx context.Context, r Repos) ([]*entity.LedgerEntry, int, error) {
		return r.Ledger.List(ctx, f)
	})
}

// MaterialLedger devuelve el material y su historial completo en orden cronológico.
func (e *Engine) MaterialLedger(ctx context.Context, materialID int64) (*entity.Material, []*entity.LedgerEntry, error) {
	var (
		mat     *entity.Material
		entries []*entity.LedgerEntry
	)
	err := e.tx.ReadOnly(ctx, func(ctx context.Context, r Repos) error {
		var err error
		if mat, err = r.Materials.GetByID(ctx, materialID); err != nil || mat == nil {
			return err
		}
		entries, err = r.Ledger.ListByMaterial(ctx, materialID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if mat == nil {
		return nil, nil, fmt.Errorf("%w: material %d no existe", domain.ErrNotFound, materialID)
	}
	return mat, entries, nil
}
