// Package pdf genera el kardex de un material: encabezado con existencias actuales y
// una fila por movimiento del historial en orden cronológico.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  KARDEX: Código + Nombre + Unidad  │  Fecha de emisión       │
//	│  EXISTENCIAS: físico / virtual / disponible / mínimo         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Cant. | Físico | Virtual | Notas      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ inventory.KardexPDFGenerator = (*KardexPDFGenerator)(nil)

// KardexPDFGenerator implementa inventory.KardexPDFGenerator con Maroto v2.
type KardexPDFGenerator struct {
	loc *time.Location
	now func() time.Time
}

// NewKardexPDFGenerator construye el generador; las fechas se imprimen en loc (UTC si es nil).
func NewKardexPDFGenerator(loc *time.Location) *KardexPDFGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &KardexPDFGenerator{loc: loc, now: time.Now}
}

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *KardexPDFGenerator) GenerateKardexPDF(_ context.Context, mat *entity.Material, entries []*entity.LedgerEntry) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+mat.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(mat))
	m.AddRows(stockRow(mat))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	if len(entries) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(text.New("Sin movimientos registrados", props.Text{
			Size: 8, Align: align.Center, Top: 2, Color: colorGray,
		}))))
	}
	for _, e := range entries {
		m.AddRows(g.entryRow(e))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *KardexPDFGenerator) headerRow(mat *entity.Material) core.Row {
	title := mat.Name
	if mat.Code != "" {
		title = mat.Code + " · " + mat.Name
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New("KARDEX DE MATERIAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 12, Top: 6}),
		),
		col.New(4).Add(
			text.New("Unidad: "+mat.Unit, props.Text{Size: 8, Align: align.Right, Top: 1, Color: colorGray}),
			text.New("Emitido: "+g.now().In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func stockRow(mat *entity.Material) core.Row {
	cell := func(label string, v decimal.Decimal, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(qty(v), props.Text{Style: fontstyle.Bold, Size: 10, Top: 5, Color: c}),
		)
	}
	var minColor *props.Color
	if mat.BelowThreshold() {
		minColor = colorRed
	}
	return row.New(14).Add(
		cell("Stock físico", mat.StockPhysical, nil),
		cell("Stock virtual", mat.StockCommitted, nil),
		cell("Disponible", mat.Available(), minColor),
		cell("Stock mínimo", mat.ReorderThreshold, nil),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Cantidad", 1, align.Right),
		h("Físico", 2, align.Right),
		h("Virtual", 2, align.Right),
		h("Notas", 3, align.Left),
	)
}

func (g *KardexPDFGenerator) entryRow(e *entity.LedgerEntry) core.Row {
	cell := func(v string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(v, props.Text{Size: 7, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		cell(e.CreatedAt.In(g.loc).Format("02/01/2006 15:04"), 2, align.Left),
		cell(kindLabel(e.Kind), 2, align.Left),
		cell(qty(e.Quantity), 1, align.Right),
		cell(qty(e.PhysicalBefore)+" → "+qty(e.PhysicalAfter), 2, align.Right),
		cell(qty(e.CommittedBefore)+" → "+qty(e.CommittedAfter), 2, align.Right),
		cell(e.Notes, 3, align.Left),
	)
}

func kindLabel(k entity.LedgerKind) string {
	switch k {
	case entity.LedgerPurchase:
		return "Compra"
	case entity.LedgerReceipt:
		return "Entrada"
	case entity.LedgerConsumption:
		return "Salida"
	case entity.LedgerPurchaseCancel:
		return "Canc. compra"
	case entity.LedgerReceiptCancel:
		return "Canc. entrada"
	case entity.LedgerConsumptionCancel:
		return "Canc. salida"
	case entity.LedgerManualAdjustment:
		return "Ajuste"
	}
	return string(k)
}

// qty formatea con hasta 3 decimales, sin ceros sobrantes.
func qty(d decimal.Decimal) string {
	return d.Round(3).String()
}
