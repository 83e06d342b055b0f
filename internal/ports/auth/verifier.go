package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
// La identidad vive fuera de este servicio; esto es solo el contrato.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
