// Package login implementa el envío de credenciales de la pantalla de login.
package login

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/ports"
)

// FailureAlert aviso único para cualquier falla de autenticación.
var FailureAlert = ports.Alert{Title: "Erro de Login", Message: "Verifique seu e-mail e senha."}

// View lógica de la pantalla de login. No navega: el Gate observa la nueva identidad.
type View struct {
	idp ports.IdentityProvider
	log zerolog.Logger
}

// NewView crea la vista de login.
func NewView(idp ports.IdentityProvider, log zerolog.Logger) *View {
	return &View{idp: idp, log: log.With().Str("component", "login").Logger()}
}

// Submit envía las credenciales tal cual se escribieron. Devuelve el aviso a mostrar o nil si
// el login fue aceptado.
func (v *View) Submit(ctx context.Context, email, password string) *ports.Alert {
	if _, err := v.idp.SignIn(ctx, email, password); err != nil {
		v.log.Error().Err(err).Msg("Erro ao fazer login")
		a := FailureAlert
		return &a
	}
	return nil
}
