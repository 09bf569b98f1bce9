package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

const (
	tableMaterials    = "materiales"
	tablePurchases    = "compras"
	tableReceipts     = "entradas"
	tableConsumptions = "salidas"
	tableLedger       = "inventario_historial"
)

var (
	materialColumns = []string{
		"id", "COALESCE(codigo, '') AS codigo", "nombre", "unidad",
		"stock_fisico", "stock_virtual", "stock_minimo", "activo", "created_at", "updated_at",
	}
	purchaseColumns = []string{
		"id", "folio", "material_id", "proveedor_id", "cantidad", "cantidad_recibida",
		"precio_unitario", "total", "fecha", "notas", "estado", "created_by", "created_at", "updated_at",
	}
	receiptColumns = []string{
		"id", "folio", "compra_id", "material_id", "cantidad", "fecha", "notas", "estado",
		"created_by", "created_at", "updated_at",
	}
	consumptionColumns = []string{
		"id", "folio", "material_id", "cantidad", "referencia", "fecha", "notas", "estado",
		"created_by", "created_at", "updated_at",
	}
	ledgerColumns = []string{
		"id", "material_id", "tipo", "referencia_id", "cantidad",
		"stock_fisico_anterior", "stock_fisico_nuevo", "stock_virtual_anterior", "stock_virtual_nuevo",
		"notas", "operacion_id", "created_by", "created_at",
	}
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// pageQuery consulta de una página y su conteo total con los mismos filtros.
type pageQuery struct {
	rows  squirrel.SelectBuilder
	count squirrel.SelectBuilder
}

func newPageQuery(table string, cols []string, where squirrel.And, orderBy []string, limit, offset int) pageQuery {
	rows := builder().Select(cols...).From(table).OrderBy(orderBy...)
	count := builder().Select("COUNT(*)").From(table)
	if len(where) > 0 {
		rows = rows.Where(where)
		count = count.Where(where)
	}
	if limit > 0 {
		rows = rows.Limit(uint64(limit))
	}
	if offset > 0 {
		rows = rows.Offset(uint64(offset))
	}
	return pageQuery{rows: rows, count: count}
}

func materialListQuery(f repository.MaterialFilter) pageQuery {
	where := squirrel.And{}
	if f.ActiveOnly {
		where = append(where, squirrel.Eq{"activo": true})
	}
	if f.Search != "" {
		like := "%" + escapeLike(f.Search) + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"codigo": like}, squirrel.ILike{"nombre": like}})
	}
	return newPageQuery(tableMaterials, materialColumns, where, []string{"nombre", "id"}, f.Limit, f.Offset)
}

// likeEscaper escapa los comodines de LIKE con la barra invertida (escape por defecto en PostgreSQL).
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func purchaseListQuery(f repository.PurchaseOrderFilter) pageQuery {
	where := squirrel.And{}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"estado": f.Status})
	}
	if f.MaterialID != 0 {
		where = append(where, squirrel.Eq{"material_id": f.MaterialID})
	}
	return newPageQuery(tablePurchases, purchaseColumns, where, []string{"fecha DESC", "id DESC"}, f.Limit, f.Offset)
}

func receiptListQuery(f repository.ReceiptFilter) pageQuery {
	where := squirrel.And{}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"estado": f.Status})
	}
	if f.PurchaseOrderID != 0 {
		where = append(where, squirrel.Eq{"compra_id": f.PurchaseOrderID})
	}
	if f.MaterialID != 0 {
		where = append(where, squirrel.Eq{"material_id": f.MaterialID})
	}
	return newPageQuery(tableReceipts, receiptColumns, where, []string{"fecha DESC", "id DESC"}, f.Limit, f.Offset)
}

func consumptionListQuery(f repository.ConsumptionFilter) pageQuery {
	where := squirrel.And{}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"estado": f.Status})
	}
	if f.MaterialID != 0 {
		where = append(where, squirrel.Eq{"material_id": f.MaterialID})
	}
	return newPageQuery(tableConsumptions, consumptionColumns, where, []string{"fecha DESC", "id DESC"}, f.Limit, f.Offset)
}

func ledgerListQuery(f repository.LedgerFilter) pageQuery {
	where := squirrel.And{}
	if f.MaterialID != 0 {
		where = append(where, squirrel.Eq{"material_id": f.MaterialID})
	}
	if f.Kind != "" {
		where = append(where, squirrel.Eq{"tipo": string(f.Kind)})
	}
	return newPageQuery(tableLedger, ledgerColumns, where, []string{"id DESC"}, f.Limit, f.Offset)
}

// selectPage ejecuta el conteo y la página. Devuelve un slice vacío, nunca nil.
func selectPage[T any](ctx context.Context, q Querier, pq pageQuery, what string) ([]*T, int, error) {
	sql, args, err := pq.count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s: %w", what, err)
	}
	var total int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", what, err)
	}

	items := make([]*T, 0)
	if total == 0 {
		return items, 0, nil
	}
	sql, args, err = pq.rows.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list %s: %w", what, err)
	}
	if err := pgxscan.Select(ctx, q, &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", what, err)
	}
	return items, total, nil
}

// getOne lee una fila por id; nil, nil si no existe. forUpdate agrega FOR UPDATE.
func getOne[T any](ctx context.Context, q Querier, table string, cols []string, id int64, forUpdate bool, what string) (*T, error) {
	sb := builder().Select(cols...).From(table).Where(squirrel.Eq{"id": id})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get %s: %w", what, err)
	}
	var out T
	if err := pgxscan.Get(ctx, q, &out, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return &out, nil
}

const folioLockSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

// folioSequenceQuery mayor consecutivo numérico de los folios de la tabla que empiezan con $1.
func folioSequenceQuery(table string) string {
	return fmt.Sprintf(`SELECT COALESCE(MAX(CAST(split_part(folio, '-', 3) AS INTEGER)), 0) `+
		`FROM %s WHERE folio LIKE $1 || '%%' AND split_part(folio, '-', 3) ~ '^[0-9]+$'`, table)
}

// maxFolioSequence toma un advisory lock por día y prefijo (se libera al terminar la tx) y devuelve
// el mayor consecutivo ya usado. Dos transacciones concurrentes del mismo día esperan su turno,
// así el folio siguiente no se repite.
func maxFolioSequence(ctx context.Context, q Querier, table, dayPrefix string) (int, error) {
	if _, err := q.Exec(ctx, folioLockSQL, dayPrefix); err != nil {
		return 0, fmt.Errorf("lock folio %s: %w", dayPrefix, err)
	}
	var last int
	if err := q.QueryRow(ctx, folioSequenceQuery(table), dayPrefix).Scan(&last); err != nil {
		return 0, fmt.Errorf("max folio %s: %w", dayPrefix, err)
	}
	return last, nil
}
