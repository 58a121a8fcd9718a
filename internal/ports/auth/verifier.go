package auth

import "context"

// AuthVerifier verifica un token de sesión contra el servicio de identidad
// y devuelve claims o error. La emisión de tokens es externa a este backend.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
