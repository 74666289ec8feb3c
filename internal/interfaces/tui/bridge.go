package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/emprestei/internal/application/home"
	"github.com/jhoicas/emprestei/internal/application/session"
)

// Bridge lleva las notificaciones del Gate y de la pantalla principal al programa.
// SetView y SetState nunca bloquean: se conserva solo el último valor de cada uno.
type Bridge struct {
	mu    sync.Mutex
	view  *session.View
	state *home.State
	wake  chan struct{}
}

// NewBridge crea un Bridge vacío.
func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

// SetView se pasa al Gate como onView.
func (b *Bridge) SetView(v session.View) {
	b.mu.Lock()
	b.view = &v
	b.mu.Unlock()
	b.notify()
}

// SetState se pasa al Gate como onHome.
func (b *Bridge) SetState(s home.State) {
	b.mu.Lock()
	b.state = &s
	b.mu.Unlock()
	b.notify()
}

func (b *Bridge) notify() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Pump envía los valores pendientes con send hasta que ctx se cancele.
// La pantalla siempre sale antes que el estado.
func (b *Bridge) Pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}

		b.mu.Lock()
		v, s := b.view, b.state
		b.view, b.state = nil, nil
		b.mu.Unlock()

		if v != nil {
			send(viewMsg{view: *v})
		}
		if s != nil {
			send(stateMsg{state: *s})
		}
	}
}
