package inventory

import (
	"context"
	"fmt"
)

// KardexUseCase arma el PDF del kardex de un material a partir de su historial.
type KardexUseCase struct {
	engine    *Engine
	generator KardexPDFGenerator
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(engine *Engine, generator KardexPDFGenerator) *KardexUseCase {
	return &KardexUseCase{engine: engine, generator: generator}
}

// GenerateKardexPDF devuelve el nombre sugerido del archivo y los bytes del PDF.
func (uc *KardexUseCase) GenerateKardexPDF(ctx context.Context, materialID int64) (string, []byte, error) {
	mat, entries, err := uc.engine.MaterialLedger(ctx, materialID)
	if err != nil {
		return "", nil, err
	}
	pdf, err := uc.generator.GenerateKardexPDF(ctx, mat, entries)
	if err != nil {
		return "", nil, fmt.Errorf("kardex material %d: %w", materialID, err)
	}
	name := fmt.Sprintf("kardex-%d.pdf", mat.ID)
	if mat.Code != "" {
		name = fmt.Sprintf("kardex-%s.pdf", mat.Code)
	}
	return name, pdf, nil
}
