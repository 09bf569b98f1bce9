// Package folio genera y valida los folios de documentos de inventario: PREFIJO-YYYYMMDD-NNN.
//
// El consecutivo se deriva siempre de lo ya persistido (máximo del día + 1) y se consulta
// dentro de la misma transacción que inserta el documento; no hay contador en memoria.
package folio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prefijos por tipo de documento.
const (
	PrefixPurchase    = "COM"
	PrefixReceipt     = "ENT"
	PrefixConsumption = "SAL"
)

const dateLayout = "20060102"

// SequenceSource devuelve el mayor consecutivo persistido para un prefijo de día ("COM-20240115-").
// Devuelve 0 si no hay documentos ese día.
type SequenceSource interface {
	MaxFolioSequence(ctx context.Context, dayPrefix string) (int, error)
}

// Folio es un folio ya descompuesto.
type Folio struct {
	Prefix string
	Date   time.Time
	Seq    int
}

// String vuelve a formatear el folio.
func (f Folio) String() string {
	return Format(f.Prefix, f.Date, f.Seq)
}

// DayPrefix devuelve la parte fija del folio para el día: "COM-20240115-".
func DayPrefix(prefix string, day time.Time) string {
	return prefix + "-" + day.Format(dateLayout) + "-"
}

// Format arma el folio con el consecutivo a 3 dígitos; pasado 999 crece a 4 o más.
func Format(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", DayPrefix(prefix, day), seq)
}

// Next calcula el siguiente folio del día consultando el máximo persistido.
func Next(ctx context.Context, src SequenceSource, prefix string, day time.Time) (string, error) {
	if !KnownPrefix(prefix) {
		return "", fmt.Errorf("folio: prefijo desconocido %q", prefix)
	}
	last, err := src.MaxFolioSequence(ctx, DayPrefix(prefix, day))
	if err != nil {
		return "", fmt.Errorf("folio: consecutivo %s: %w", prefix, err)
	}
	return Format(prefix, day, last+1), nil
}

// KnownPrefix indica si el prefijo corresponde a un tipo de documento del motor.
func KnownPrefix(prefix string) bool {
	switch prefix {
	case PrefixPurchase, PrefixReceipt, PrefixConsumption:
		return true
	}
	return false
}

// Parse valida y descompone un folio. Sufijos de importación (-D2) se rechazan.
func Parse(s string) (Folio, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Folio{}, fmt.Errorf("folio %q: formato esperado PREFIJO-YYYYMMDD-NNN", s)
	}
	if !KnownPrefix(parts[0]) {
		return Folio{}, fmt.Errorf("folio %q: prefijo desconocido", s)
	}
	day, err := time.Parse(dateLayout, parts[1])
	if err != nil {
		return Folio{}, fmt.Errorf("folio %q: fecha inválida", s)
	}
	if len(parts[2]) < 3 {
		return Folio{}, fmt.Errorf("folio %q: consecutivo de al menos 3 dígitos", s)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq <= 0 || strings.HasPrefix(parts[2], "+") {
		return Folio{}, fmt.Errorf("folio %q: consecutivo inválido", s)
	}
	return Folio{Prefix: parts[0], Date: day, Seq: seq}, nil
}
