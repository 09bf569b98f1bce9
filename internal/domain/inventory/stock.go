// Package inventory contiene los servicios de dominio puros sobre los contadores de stock.
package inventory

import "github.com/shopspring/decimal"

// Decimales que admite el almacenamiento: cantidades NUMERIC(14,3), precios NUMERIC(14,2).
const (
	QuantityScale int32 = 3
	PriceScale    int32 = 2
)

// FitsScale indica si v no tiene más decimales significativos que scale.
func FitsScale(v decimal.Decimal, scale int32) bool {
	return v.Equal(v.Truncate(scale))
}

// idealFactor multiplica el stock mínimo para obtener el stock ideal de reposición.
var idealFactor = decimal.NewFromFloat(1.5)

// Counters foto de los dos contadores de un material.
type Counters struct {
	Physical  decimal.Decimal
	Committed decimal.Decimal
}

// ClampZero devuelve v, o cero si v es negativo. Solo se usa al revertir.
func ClampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// SubClamped resta q de v sin bajar de cero.
func SubClamped(v, q decimal.Decimal) decimal.Decimal {
	return ClampZero(v.Sub(q))
}

// SuggestedOrder cantidad sugerida para volver al stock ideal:
// (minimo * 1.5) - disponible, nunca negativa.
func SuggestedOrder(threshold, available decimal.Decimal) decimal.Decimal {
	return ClampZero(threshold.Mul(idealFactor).Sub(available))
}

// DeficitRatio déficit relativo bajo el mínimo: (minimo - disponible) / minimo.
// Cero si no hay mínimo o el disponible lo cubre.
func DeficitRatio(threshold, available decimal.Decimal) decimal.Decimal {
	if !threshold.IsPositive() {
		return decimal.Zero
	}
	return ClampZero(threshold.Sub(available)).Div(threshold)
}
