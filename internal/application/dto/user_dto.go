package dto

import "time"

// TokenRequest datos para emitir un token de acceso a un usuario del backoffice.
// Los usuarios viven en el sistema de identidad externo; aquí solo se firma el token.
type TokenRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
	Role   string `json:"role" validate:"required,oneof=admin bodeguero consulta"`
}

// TokenResponse token JWT firmado con su vencimiento.
type TokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
