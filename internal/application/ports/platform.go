// Package ports define los puertos de salida del front-end hacia la plataforma
// (identidad y base de datos en tiempo real). Los adaptadores viven en infrastructure/platform.
package ports

import (
	"context"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// IdentityProvider puerto del proveedor de identidad.
type IdentityProvider interface {
	// SignIn autentica con las credenciales tal cual las escribió el usuario.
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChanged llama fn con la identidad actual al registrarse y en cada cambio
	// (nil = sin sesión). La función devuelta cancela la suscripción.
	OnAuthStateChanged(fn func(*entity.Identity)) (unsubscribe func())
}

// Database puerto de la base de datos en árbol direccionada por rutas.
type Database interface {
	// Subscribe llama fn con el snapshot actual y luego en cada cambio de la ruta.
	Subscribe(ctx context.Context, path string, fn func(entity.Snapshot)) (unsubscribe func(), err error)
	Set(ctx context.Context, path string, value any) error
	// Update escribe solo los hijos indicados en fields.
	Update(ctx context.Context, path string, fields map[string]any) error
	// NewKey genera una clave única y creciente para un hijo nuevo de path.
	NewKey(path string) string
}

// Alert aviso modal mostrado al usuario.
type Alert struct {
	Title   string
	Message string
}
