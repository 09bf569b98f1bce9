package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	domaininv "github.com/jhoicas/obrica-api/internal/domain/inventory"
)

// ReplenishmentItem material activo cuyo disponible quedó bajo el stock mínimo.
type ReplenishmentItem struct {
	MaterialID     int64
	Code           string
	Name           string
	Unit           string
	Available      decimal.Decimal
	Threshold      decimal.Decimal
	IdealStock     decimal.Decimal // mínimo * 1.5
	SuggestedOrder decimal.Decimal // ideal - disponible
	DeficitRatio   decimal.Decimal
	Priority       int // 1 = más urgente
}

// ReplenishmentList genera la lista de reposición ordenada por mayor déficit relativo
// y, a igualdad, por mayor cantidad sugerida.
func (e *Engine) ReplenishmentList(ctx context.Context) ([]ReplenishmentItem, error) {
	var items []ReplenishmentItem
	err := e.tx.ReadOnly(ctx, func(ctx context.Context, r Repos) error {
		mats, err := r.Materials.ListBelowThreshold(ctx)
		if err != nil {
			return err
		}
		items = make([]ReplenishmentItem, 0, len(mats))
		for _, m := range mats {
			available := m.Available()
			items = append(items, ReplenishmentItem{
				MaterialID:     m.ID,
				Code:           m.Code,
				Name:           m.Name,
				Unit:           m.Unit,
				Available:      available,
				Threshold:      m.ReorderThreshold,
				IdealStock:     m.ReorderThreshold.Mul(decimal.NewFromFloat(1.5)),
				SuggestedOrder: domaininv.SuggestedOrder(m.ReorderThreshold, available),
				DeficitRatio:   domaininv.DeficitRatio(m.ReorderThreshold, available),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.DeficitRatio.Equal(b.DeficitRatio) {
			return a.DeficitRatio.GreaterThan(b.DeficitRatio)
		}
		return a.SuggestedOrder.GreaterThan(b.SuggestedOrder)
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}
