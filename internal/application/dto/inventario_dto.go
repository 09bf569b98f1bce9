package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// DateLayout formato de fechas de documento (fecha de compra, entrada, salida).
const DateLayout = "2006-01-02"

// ── Materiales ───────────────────────────────────────────────────────────────

// CreateMaterialRequest body para POST /api/inventario/materiales.
type CreateMaterialRequest struct {
	Codigo      string           `json:"codigo" validate:"max=50"`
	Nombre      string           `json:"nombre" validate:"required,max=200"`
	Unidad      string           `json:"unidad" validate:"max=20"`
	StockMinimo *decimal.Decimal `json:"stock_minimo,omitempty"`
}

// MaterialResponse material con su stock disponible.
type MaterialResponse struct {
	ID              int64           `json:"id"`
	Codigo          string          `json:"codigo"`
	Nombre          string          `json:"nombre"`
	Unidad          string          `json:"unidad"`
	StockFisico     decimal.Decimal `json:"stock_fisico"`
	StockVirtual    decimal.Decimal `json:"stock_virtual"`
	StockDisponible decimal.Decimal `json:"stock_disponible"` // físico + virtual
	StockMinimo     decimal.Decimal `json:"stock_minimo"`
	BajoMinimo      bool            `json:"bajo_minimo"`
	Activo          bool            `json:"activo"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MaterialListResponse listado paginado de materiales (almacén).
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

func MaterialFromEntity(m *entity.Material) MaterialResponse {
	return MaterialResponse{
		ID:              m.ID,
		Codigo:          m.Code,
		Nombre:          m.Name,
		Unidad:          m.Unit,
		StockFisico:     m.StockPhysical,
		StockVirtual:    m.StockCommitted,
		StockDisponible: m.Available(),
		StockMinimo:     m.ReorderThreshold,
		BajoMinimo:      m.BelowThreshold(),
		Activo:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func MaterialsFromEntities(items []*entity.Material) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(items))
	for _, m := range items {
		out = append(out, MaterialFromEntity(m))
	}
	return out
}

// AjusteRequest body para POST /api/inventario/almacen/ajuste.
// Al menos uno de stock_fisico o stock_minimo; motivo obligatorio si se cambia stock_fisico.
type AjusteRequest struct {
	MaterialID  int64            `json:"material_id" validate:"required,gt=0"`
	StockFisico *decimal.Decimal `json:"stock_fisico,omitempty"`
	StockMinimo *decimal.Decimal `json:"stock_minimo,omitempty"`
	Motivo      string           `json:"motivo" validate:"max=500"`
}

// ── Compras ──────────────────────────────────────────────────────────────────

// CreateCompraRequest body para POST /api/inventario/compras.
type CreateCompraRequest struct {
	MaterialID     int64           `json:"material_id" validate:"required,gt=0"`
	ProveedorID    *int64          `json:"proveedor_id,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Fecha          string          `json:"fecha,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notas          string          `json:"notas" validate:"max=500"`
}

// CompraResponse compra con su pendiente por recibir.
type CompraResponse struct {
	ID               int64           `json:"id"`
	Folio            string          `json:"folio"`
	MaterialID       int64           `json:"material_id"`
	ProveedorID      *int64          `json:"proveedor_id,omitempty"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	CantidadRecibida decimal.Decimal `json:"cantidad_recibida"`
	Pendiente        decimal.Decimal `json:"pendiente"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Total            decimal.Decimal `json:"total"`
	Fecha            string          `json:"fecha"`
	Notas            string          `json:"notas"`
	Estado           string          `json:"estado"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

type CompraListResponse struct {
	Items []CompraResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

func CompraFromEntity(p *entity.PurchaseOrder) CompraResponse {
	return CompraResponse{
		ID:               p.ID,
		Folio:            p.Folio,
		MaterialID:       p.MaterialID,
		ProveedorID:      p.SupplierID,
		Cantidad:         p.Quantity,
		CantidadRecibida: p.Received,
		Pendiente:        p.Pending(),
		PrecioUnitario:   p.UnitPrice,
		Total:            p.Total,
		Fecha:            p.Date.Format(DateLayout),
		Notas:            p.Notes,
		Estado:           p.Status,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt,
	}
}

func ComprasFromEntities(items []*entity.PurchaseOrder) []CompraResponse {
	out := make([]CompraResponse, 0, len(items))
	for _, p := range items {
		out = append(out, CompraFromEntity(p))
	}
	return out
}

// ── Entradas ─────────────────────────────────────────────────────────────────

// CreateEntradaRequest body para POST /api/inventario/entradas.
type CreateEntradaRequest struct {
	CompraID int64           `json:"compra_id" validate:"required,gt=0"`
	Cantidad decimal.Decimal `json:"cantidad"`
	Fecha    string          `json:"fecha,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notas    string          `json:"notas" validate:"max=500"`
}

type EntradaResponse struct {
	ID         int64           `json:"id"`
	Folio      string          `json:"folio"`
	CompraID   int64           `json:"compra_id"`
	MaterialID int64           `json:"material_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Fecha      string          `json:"fecha"`
	Notas      string          `json:"notas"`
	Estado     string          `json:"estado"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

type EntradaListResponse struct {
	Items []EntradaResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

func EntradaFromEntity(r *entity.Receipt) EntradaResponse {
	return EntradaResponse{
		ID:         r.ID,
		Folio:      r.Folio,
		CompraID:   r.PurchaseOrderID,
		MaterialID: r.MaterialID,
		Cantidad:   r.Quantity,
		Fecha:      r.Date.Format(DateLayout),
		Notas:      r.Notes,
		Estado:     r.Status,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
}

func EntradasFromEntities(items []*entity.Receipt) []EntradaResponse {
	out := make([]EntradaResponse, 0, len(items))
	for _, r := range items {
		out = append(out, EntradaFromEntity(r))
	}
	return out
}

// ── Salidas ──────────────────────────────────────────────────────────────────

// CreateSalidaRequest body para POST /api/inventario/salidas. referencia = obra o frente de trabajo.
type CreateSalidaRequest struct {
	MaterialID int64           `json:"material_id" validate:"required,gt=0"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Referencia string          `json:"referencia" validate:"required,max=200"`
	Fecha      string          `json:"fecha,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notas      string          `json:"notas" validate:"max=500"`
}

type SalidaResponse struct {
	ID         int64           `json:"id"`
	Folio      string          `json:"folio"`
	MaterialID int64           `json:"material_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Referencia string          `json:"referencia"`
	Fecha      string          `json:"fecha"`
	Notas      string          `json:"notas"`
	Estado     string          `json:"estado"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

type SalidaListResponse struct {
	Items []SalidaResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

func SalidaFromEntity(s *entity.Consumption) SalidaResponse {
	return SalidaResponse{
		ID:         s.ID,
		Folio:      s.Folio,
		MaterialID: s.MaterialID,
		Cantidad:   s.Quantity,
		Referencia: s.Reference,
		Fecha:      s.Date.Format(DateLayout),
		Notas:      s.Notes,
		Estado:     s.Status,
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
	}
}

func SalidasFromEntities(items []*entity.Consumption) []SalidaResponse {
	out := make([]SalidaResponse, 0, len(items))
	for _, s := range items {
		out = append(out, SalidaFromEntity(s))
	}
	return out
}

// ── Historial ────────────────────────────────────────────────────────────────

// HistorialResponse movimiento del historial con los contadores antes y después.
type HistorialResponse struct {
	ID                   int64           `json:"id"`
	MaterialID           int64           `json:"material_id"`
	Tipo                 string          `json:"tipo"`
	ReferenciaID         *int64          `json:"referencia_id,omitempty"`
	Cantidad             decimal.Decimal `json:"cantidad"`
	StockFisicoAnterior  decimal.Decimal `json:"stock_fisico_anterior"`
	StockFisicoNuevo     decimal.Decimal `json:"stock_fisico_nuevo"`
	StockVirtualAnterior decimal.Decimal `json:"stock_virtual_anterior"`
	StockVirtualNuevo    decimal.Decimal `json:"stock_virtual_nuevo"`
	Notas                string          `json:"notas"`
	OperacionID          string          `json:"operacion_id"`
	CreatedBy            string          `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
}

type HistorialListResponse struct {
	Items []HistorialResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

func HistorialFromEntities(items []*entity.LedgerEntry) []HistorialResponse {
	out := make([]HistorialResponse, 0, len(items))
	for _, e := range items {
		out = append(out, HistorialResponse{
			ID:                   e.ID,
			MaterialID:           e.MaterialID,
			Tipo:                 string(e.Kind),
			ReferenciaID:         e.ReferenceID,
			Cantidad:             e.Quantity,
			StockFisicoAnterior:  e.PhysicalBefore,
			StockFisicoNuevo:     e.PhysicalAfter,
			StockVirtualAnterior: e.CommittedBefore,
			StockVirtualNuevo:    e.CommittedAfter,
			Notas:                e.Notes,
			OperacionID:          e.OperationID,
			CreatedBy:            e.CreatedBy,
			CreatedAt:            e.CreatedAt,
		})
	}
	return out
}

// ── Reposición ───────────────────────────────────────────────────────────────

// ReposicionItemDTO sugerencia de compra para un material bajo su stock mínimo.
type ReposicionItemDTO struct {
	MaterialID       int64           `json:"material_id"`
	Codigo           string          `json:"codigo"`
	Nombre           string          `json:"nombre"`
	Unidad           string          `json:"unidad"`
	StockDisponible  decimal.Decimal `json:"stock_disponible"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
	StockIdeal       decimal.Decimal `json:"stock_ideal"`       // mínimo * 1.5
	CantidadSugerida decimal.Decimal `json:"cantidad_sugerida"` // ideal - disponible
	Prioridad        int             `json:"prioridad"`         // 1 = más urgente
}

type ReposicionResponse struct {
	Total int                 `json:"total"`
	Items []ReposicionItemDTO `json:"items"`
}

func ReposicionFromItems(items []inventory.ReplenishmentItem) ReposicionResponse {
	out := make([]ReposicionItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ReposicionItemDTO{
			MaterialID:       it.MaterialID,
			Codigo:           it.Code,
			Nombre:           it.Name,
			Unidad:           it.Unit,
			StockDisponible:  it.Available,
			StockMinimo:      it.Threshold,
			StockIdeal:       it.IdealStock,
			CantidadSugerida: it.SuggestedOrder,
			Prioridad:        it.Priority,
		})
	}
	return ReposicionResponse{Total: len(out), Items: out}
}
