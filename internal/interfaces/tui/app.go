// Package tui es el front-end de terminal (bubbletea). Muestra el login o la pantalla
// principal según lo que decida session.Gate y traduce teclas a eventos de home.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/emprestei/internal/application/home"
	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/application/session"
)

type (
	viewMsg      struct{ view session.View }
	stateMsg     struct{ state home.State }
	loginDoneMsg struct{ alert *ports.Alert }
)

// Authenticator envía credenciales; login.View lo implementa.
type Authenticator interface {
	Submit(ctx context.Context, email, password string) *ports.Alert
}

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenHome
)

// App modelo raíz del programa.
type App struct {
	ctx   context.Context
	login Authenticator
	now   func() time.Time

	width, height int
	screen        screen
	loginForm     loginModel
	home          homeModel
}

// New crea la aplicación. Hasta que llegue la primera pantalla del Gate muestra "Carregando…".
func New(ctx context.Context, login Authenticator) App {
	return App{ctx: ctx, login: login, now: time.Now}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.screen == screenHome {
			a.home = a.home.resize(msg.Width, msg.Height)
		}
		return a, nil

	case viewMsg:
		if msg.view.Home == nil || msg.view.Identity == nil {
			a.screen = screenLogin
			a.loginForm = newLoginModel()
			a.home = homeModel{}
			return a, nil
		}
		a.screen = screenHome
		a.home = newHomeModel(a.ctx, msg.view.Identity.UID, msg.view.Home, a.now, a.width, a.height)
		return a, nil

	case stateMsg:
		// Estados de una pantalla principal anterior se descartan.
		if a.screen == screenHome && msg.state.UID == a.home.uid {
			a.home = a.home.apply(msg.state)
		}
		return a, nil

	case loginDoneMsg:
		if a.screen == screenLogin {
			a.loginForm.busy = false
			a.loginForm.alert = msg.alert
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			var (
				cmd    tea.Cmd
				submit bool
			)
			a.loginForm, cmd, submit = a.loginForm.update(msg)
			if submit {
				return a, a.submitLogin(a.loginForm.email.Value(), a.loginForm.password.Value())
			}
			return a, cmd
		case screenHome:
			var cmd tea.Cmd
			a.home, cmd = a.home.update(msg)
			return a, cmd
		}
	}
	return a, nil
}

// submitLogin corre el login fuera del bucle de eventos. Si tiene éxito el Gate cambia la
// pantalla por su cuenta.
func (a App) submitLogin(email, password string) tea.Cmd {
	auth, ctx := a.login, a.ctx
	return func() tea.Msg {
		return loginDoneMsg{alert: auth.Submit(ctx, email, password)}
	}
}

func (a App) View() string {
	switch a.screen {
	case screenLogin:
		return a.loginForm.view(a.width, a.height)
	case screenHome:
		return a.home.view()
	}
	return overlay(a.width, a.height, mutedStyle.Render("Carregando…"))
}
