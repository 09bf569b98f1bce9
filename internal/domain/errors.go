package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El motor de inventario los envuelve con fmt.Errorf("%w: ...") para dar el detalle.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrInvalidState         = errors.New("estado inválido para la operación")
	ErrPreconditionFailed   = errors.New("precondición no cumplida")
	ErrMissingJustification = errors.New("justificación obligatoria")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)
