// Package session implementa el Gate: observa el estado de autenticación y decide si se
// muestra el login o la pantalla principal.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/home"
	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// View lo que el Gate muestra. Home nil significa pantalla de login.
type View struct {
	Identity *entity.Identity
	Home     *home.Controller
}

// Gate mantiene una única suscripción al estado de autenticación.
type Gate struct {
	idp    ports.IdentityProvider
	db     ports.Database
	log    zerolog.Logger
	onView func(View)
	onHome func(home.State)

	mu       sync.Mutex
	ctx      context.Context
	current  *entity.Identity
	resolved bool // ya llegó el primer evento de autenticación
	stopHome context.CancelFunc
	homeDone chan struct{}
}

// NewGate crea el Gate. onView se llama en cada cambio de pantalla y onHome en cada cambio
// de estado de la pantalla principal.
func NewGate(idp ports.IdentityProvider, db ports.Database, log zerolog.Logger, onView func(View), onHome func(home.State)) *Gate {
	if onView == nil {
		onView = func(View) {}
	}
	return &Gate{
		idp:    idp,
		db:     db,
		log:    log.With().Str("component", "session").Logger(),
		onView: onView,
		onHome: onHome,
	}
}

// Run se suscribe al estado de autenticación hasta que ctx se cancele. Al salir libera la
// suscripción y detiene la pantalla principal activa.
func (g *Gate) Run(ctx context.Context) error {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()

	unsubscribe := g.idp.OnAuthStateChanged(g.authChanged)
	<-ctx.Done()
	unsubscribe()

	g.mu.Lock()
	g.teardownLocked()
	g.mu.Unlock()
	return nil
}

// Current identidad actual o nil.
func (g *Gate) Current() *entity.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Gate) authChanged(id *entity.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx == nil || g.ctx.Err() != nil {
		return
	}

	if id != nil {
		g.log.Info().Str("uid", id.UID).Msg("usuário autenticado")
	}
	if g.resolved && sameUser(g.current, id) {
		return
	}
	g.resolved = true

	g.teardownLocked()
	g.current = id
	if id == nil {
		g.onView(View{})
		return
	}

	ctx, cancel := context.WithCancel(g.ctx)
	done := make(chan struct{})
	ctrl := home.NewController(id.UID, g.db, g.idp, g.log, g.onHome)
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil {
			g.log.Error().Err(err).Str("uid", id.UID).Msg("pantalla principal terminó con error")
		}
	}()
	g.stopHome, g.homeDone = cancel, done
	g.onView(View{Identity: id, Home: ctrl})
}

// teardownLocked detiene la pantalla principal y espera a que libere sus suscripciones.
func (g *Gate) teardownLocked() {
	if g.stopHome == nil {
		return
	}
	g.stopHome()
	<-g.homeDone
	g.stopHome, g.homeDone = nil, nil
}

func sameUser(a, b *entity.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UID == b.UID
}
