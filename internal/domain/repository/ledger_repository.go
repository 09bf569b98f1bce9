package repository

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
)

// LedgerFilter filtros del historial. Kind vacío = todos los tipos.
type LedgerFilter struct {
	MaterialID int64
	Kind       entity.LedgerKind
	Limit      int
	Offset     int
}

// LedgerRepository historial de inventario: solo se agrega y se lee, nunca se modifica.
type LedgerRepository interface {
	Append(ctx context.Context, e *entity.LedgerEntry) error
	// List devuelve la página más reciente primero y el total que cumple el filtro.
	List(ctx context.Context, f LedgerFilter) ([]*entity.LedgerEntry, int, error)
	// ListByMaterial devuelve todos los movimientos de un material en orden cronológico (kardex).
	ListByMaterial(ctx context.Context, materialID int64) ([]*entity.LedgerEntry, error)
}
