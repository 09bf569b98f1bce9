package inventory

import (
	"context"

	"github.com/jhoicas/obrica-api/internal/domain/entity"
	"github.com/jhoicas/obrica-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Materials    repository.MaterialRepository
	Purchases    repository.PurchaseOrderRepository
	Receipts     repository.ReceiptRepository
	Consumptions repository.ConsumptionRepository
	Ledger       repository.LedgerRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Run hace Commit si fn devuelve nil y Rollback en cualquier otro caso.
// ReadOnly se usa para consultas.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	ReadOnly(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// KardexPDFGenerator genera el kardex (historial cronológico) de un material en PDF.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, material *entity.Material, entries []*entity.LedgerEntry) ([]byte, error)
}
