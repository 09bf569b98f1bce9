package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Columnas del almacen.csv histórico.
const (
	colCodigo       = "CODIGO"
	colMaterial     = "MATERIAL"
	colUnidad       = "UNIDAD"
	colStockFisico  = "STOCK FISICO"
	colStockMinimo  = "STOCK MINIMO"
	colStockVirtual = "STOCK VIRTUAL"
)

type materialRow struct {
	Codigo       string
	Nombre       string
	Unidad       string
	StockFisico  decimal.Decimal
	StockMinimo  decimal.Decimal
	StockVirtual decimal.Decimal
}

type parseResult struct {
	Rows    []materialRow
	Skipped []string // motivo por fila omitida
}

// decodeInput devuelve el contenido en UTF-8. Las exportaciones de Excel vienen en ISO-8859-1.
func decodeInput(raw []byte) (io.Reader, bool) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), false
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), true
}

// parseQuantity: vacío o "-" es 0; se quitan espacios y separadores de miles.
func parseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	return decimal.NewFromString(s)
}

func parseAlmacen(r io.Reader) (*parseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{colCodigo, colMaterial} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q", col)
		}
	}

	res := &parseResult{}
	seen := make(map[string]bool)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row := materialRow{
			Codigo: field(colCodigo),
			Nombre: field(colMaterial),
			Unidad: strings.ToUpper(field(colUnidad)),
		}
		if row.Nombre == "" {
			continue
		}
		if row.Codigo != "" && seen[row.Codigo] {
			res.Skipped = append(res.Skipped, fmt.Sprintf("línea %d: código %s repetido", line, row.Codigo))
			continue
		}

		quantities := []struct {
			col string
			dst *decimal.Decimal
		}{
			{colStockFisico, &row.StockFisico},
			{colStockMinimo, &row.StockMinimo},
			{colStockVirtual, &row.StockVirtual},
		}
		bad := ""
		for _, q := range quantities {
			v, err := parseQuantity(field(q.col))
			if err != nil {
				bad = fmt.Sprintf("línea %d: %s inválido %q", line, q.col, field(q.col))
				break
			}
			if v.IsNegative() {
				bad = fmt.Sprintf("línea %d: %s negativo (%s)", line, q.col, v)
				break
			}
			*q.dst = v
		}
		if bad != "" {
			res.Skipped = append(res.Skipped, bad)
			continue
		}

		if row.Codigo != "" {
			seen[row.Codigo] = true
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func writeSeedSQL(w io.Writer, rows []materialRow) error {
	var b strings.Builder
	b.WriteString("-- Materiales iniciales del almacén\n")
	b.WriteString("-- Generado desde almacen.csv con cmd/seed_materiales\n\n")
	for _, r := range rows {
		codigo := "NULL"
		if r.Codigo != "" {
			codigo = "'" + escapeSQL(r.Codigo) + "'"
		}
		unidad := r.Unidad
		if unidad == "" {
			unidad = "PZA"
		}
		fmt.Fprintf(&b, "INSERT INTO materiales (codigo, nombre, unidad, stock_fisico, stock_virtual, stock_minimo, activo)\n")
		fmt.Fprintf(&b, "VALUES (%s, '%s', '%s', %s, %s, %s, TRUE)\n",
			codigo, escapeSQL(r.Nombre), escapeSQL(unidad),
			r.StockFisico.String(), r.StockVirtual.String(), r.StockMinimo.String())
		b.WriteString("ON CONFLICT DO NOTHING;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
