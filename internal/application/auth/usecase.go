package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/obrica-api/internal/application/dto"
	"github.com/jhoicas/obrica-api/internal/domain"
	"github.com/jhoicas/obrica-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenIssuer firma tokens de acceso para los roles del backoffice (admin, bodeguero, consulta).
type TokenIssuer struct {
	jwtCfg JWTConfig
	now    func() time.Time
}

// NewTokenIssuer construye el emisor de tokens.
func NewTokenIssuer(jwtCfg JWTConfig) *TokenIssuer {
	return &TokenIssuer{jwtCfg: jwtCfg, now: time.Now}
}

// Issue valida el rol y devuelve el token firmado.
func (uc *TokenIssuer) Issue(in dto.TokenRequest) (*dto.TokenResponse, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id es obligatorio", domain.ErrInvalidInput)
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta:
	default:
		return nil, fmt.Errorf("%w: rol %q no reconocido", domain.ErrInvalidInput, in.Role)
	}
	if uc.jwtCfg.ExpMinutes <= 0 {
		return nil, fmt.Errorf("%w: la expiración del token debe ser mayor a 0 minutos", domain.ErrInvalidInput)
	}

	issuedAt := uc.now()
	token, err := jwt.Generate(uc.jwtCfg.Secret, userID, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token:     token,
		UserID:    userID,
		Role:      role,
		ExpiresAt: issuedAt.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
	}, nil
}
