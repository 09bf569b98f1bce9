package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/folio"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository      = (*materialRepo)(nil)
	_ repository.PurchaseOrderRepository = (*purchaseRepo)(nil)
	_ repository.ReceiptRepository       = (*receiptRepo)(nil)
	_ repository.ConsumptionRepository   = (*consumptionRepo)(nil)
	_ repository.LedgerRepository        = (*ledgerRepo)(nil)
)

// page recorta items según limit/offset; limit <= 0 devuelve todo desde offset.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// maxSequence mayor consecutivo entre los folios que empiezan con dayPrefix.
func maxSequence(folios []string, dayPrefix string) int {
	last := 0
	for _, f := range folios {
		if !strings.HasPrefix(f, dayPrefix) {
			continue
		}
		parsed, err := folio.Parse(f)
		if err != nil {
			continue
		}
		if parsed.Seq > last {
			last = parsed.Seq
		}
	}
	return last
}

// ── Materiales ────────────────────────────────────────────────────────────────

type materialRepo struct{ st *state }

func (r *materialRepo) Create(_ context.Context, m *entity.Material) error {
	if m.Code != "" {
		for _, other := range r.st.materials {
			if other.Code == m.Code {
				return fmt.Errorf("%w: código de material %s", domain.ErrDuplicate, m.Code)
			}
		}
	}
	r.st.seq.material++
	m.ID = r.st.seq.material
	r.st.materials[m.ID] = m.Clone()
	return nil
}

func (r *materialRepo) GetByID(_ context.Context, id int64) (*entity.Material, error) {
	m, ok := r.st.materials[id]
	if !ok {
		return nil, nil
	}
	return m.Clone(), nil
}

func (r *materialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	for _, m := range r.st.materials {
		if m.Code == code {
			return m.Clone(), nil
		}
	}
	return nil, nil
}

// GetForUpdate no necesita bloqueo propio: la transacción ya tiene el mutex del Store.
func (r *materialRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *materialRepo) UpdateStock(_ context.Context, m *entity.Material) error {
	cur, ok := r.st.materials[m.ID]
	if !ok {
		return fmt.Errorf("update stock: %w: material %d", domain.ErrNotFound, m.ID)
	}
	cur.StockPhysical = m.StockPhysical
	cur.StockCommitted = m.StockCommitted
	cur.ReorderThreshold = m.ReorderThreshold
	cur.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *materialRepo) SetActive(_ context.Context, id int64, active bool) error {
	cur, ok := r.st.materials[id]
	if !ok {
		return fmt.Errorf("set active: %w: material %d", domain.ErrNotFound, id)
	}
	cur.Active = active
	return nil
}

func (r *materialRepo) List(_ context.Context, f repository.MaterialFilter) ([]*entity.Material, int, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Material
	for _, m := range r.st.materials {
		if f.ActiveOnly && !m.Active {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Code), search) {
			continue
		}
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *materialRepo) ListBelowThreshold(_ context.Context) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, m := range r.st.materials {
		if m.Active && m.BelowThreshold() {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Compras ───────────────────────────────────────────────────────────────────

type purchaseRepo struct{ st *state }

func (r *purchaseRepo) Create(_ context.Context, p *entity.PurchaseOrder) error {
	for _, other := range r.st.purchases {
		if other.Folio == p.Folio {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, p.Folio)
		}
	}
	r.st.seq.purchase++
	p.ID = r.st.seq.purchase
	r.st.purchases[p.ID] = p.Clone()
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) Update(_ context.Context, p *entity.PurchaseOrder) error {
	cur, ok := r.st.purchases[p.ID]
	if !ok {
		return fmt.Errorf("update compra: %w: %d", domain.ErrNotFound, p.ID)
	}
	cur.Received = p.Received
	cur.Status = p.Status
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *purchaseRepo) List(_ context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	var out []*entity.PurchaseOrder
	for _, p := range r.st.purchases {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.MaterialID > 0 && p.MaterialID != f.MaterialID {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *purchaseRepo) MaxFolioSequence(_ context.Context, dayPrefix string) (int, error) {
	folios := make([]string, 0, len(r.st.purchases))
	for _, p := range r.st.purchases {
		folios = append(folios, p.Folio)
	}
	return maxSequence(folios, dayPrefix), nil
}

// ── Entradas ──────────────────────────────────────────────────────────────────

type receiptRepo struct{ st *state }

func (r *receiptRepo) Create(_ context.Context, rec *entity.Receipt) error {
	for _, other := range r.st.receipts {
		if other.Folio == rec.Folio {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, rec.Folio)
		}
	}
	r.st.seq.receipt++
	rec.ID = r.st.seq.receipt
	r.st.receipts[rec.ID] = rec.Clone()
	return nil
}

func (r *receiptRepo) GetByID(_ context.Context, id int64) (*entity.Receipt, error) {
	rec, ok := r.st.receipts[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (r *receiptRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Receipt, error) {
	return r.GetByID(ctx, id)
}

func (r *receiptRepo) UpdateStatus(_ context.Context, rec *entity.Receipt) error {
	cur, ok := r.st.receipts[rec.ID]
	if !ok {
		return fmt.Errorf("update entrada: %w: %d", domain.ErrNotFound, rec.ID)
	}
	cur.Status = rec.Status
	cur.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *receiptRepo) List(_ context.Context, f repository.ReceiptFilter) ([]*entity.Receipt, int, error) {
	var out []*entity.Receipt
	for _, rec := range r.st.receipts {
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.PurchaseOrderID > 0 && rec.PurchaseOrderID != f.PurchaseOrderID {
			continue
		}
		if f.MaterialID > 0 && rec.MaterialID != f.MaterialID {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *receiptRepo) CountActiveByPurchaseOrder(_ context.Context, purchaseOrderID int64) (int, error) {
	n := 0
	for _, rec := range r.st.receipts {
		if rec.PurchaseOrderID == purchaseOrderID && rec.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *receiptRepo) MaxFolioSequence(_ context.Context, dayPrefix string) (int, error) {
	folios := make([]string, 0, len(r.st.receipts))
	for _, rec := range r.st.receipts {
		folios = append(folios, rec.Folio)
	}
	return maxSequence(folios, dayPrefix), nil
}

// ── Salidas ───────────────────────────────────────────────────────────────────

type consumptionRepo struct{ st *state }

func (r *consumptionRepo) Create(_ context.Context, s *entity.Consumption) error {
	for _, other := range r.st.consumptions {
		if other.Folio == s.Folio {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, s.Folio)
		}
	}
	r.st.seq.consumption++
	s.ID = r.st.seq.consumption
	r.st.consumptions[s.ID] = s.Clone()
	return nil
}

func (r *consumptionRepo) GetByID(_ context.Context, id int64) (*entity.Consumption, error) {
	s, ok := r.st.consumptions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *consumptionRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Consumption, error) {
	return r.GetByID(ctx, id)
}

func (r *consumptionRepo) UpdateStatus(_ context.Context, s *entity.Consumption) error {
	cur, ok := r.st.consumptions[s.ID]
	if !ok {
		return fmt.Errorf("update salida: %w: %d", domain.ErrNotFound, s.ID)
	}
	cur.Status = s.Status
	cur.UpdatedAt = s.UpdatedAt
	return nil
}

func (r *consumptionRepo) List(_ context.Context, f repository.ConsumptionFilter) ([]*entity.Consumption, int, error) {
	var out []*entity.Consumption
	for _, s := range r.st.consumptions {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.MaterialID > 0 && s.MaterialID != f.MaterialID {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *consumptionRepo) MaxFolioSequence(_ context.Context, dayPrefix string) (int, error) {
	folios := make([]string, 0, len(r.st.consumptions))
	for _, s := range r.st.consumptions {
		folios = append(folios, s.Folio)
	}
	return maxSequence(folios, dayPrefix), nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	r.st.seq.ledger++
	e.ID = r.st.seq.ledger
	r.st.ledger = append(r.st.ledger, e.Clone())
	return nil
}

func (r *ledgerRepo) List(_ context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var out []*entity.LedgerEntry
	for i := len(r.st.ledger) - 1; i >= 0; i-- {
		e := r.st.ledger[i]
		if f.MaterialID > 0 && e.MaterialID != f.MaterialID {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		out = append(out, e.Clone())
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ledgerRepo) ListByMaterial(_ context.Context, materialID int64) ([]*entity.LedgerEntry, error) {
	out := []*entity.LedgerEntry{}
	for _, e := range r.st.ledger {
		if e.MaterialID == materialID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}
