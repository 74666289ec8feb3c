package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/emprestei/internal/application/ports"
)

// loginModel pantalla de login: e-mail, senha (enmascarada) y el aviso de error.
type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focus    int // 0 e-mail, 1 senha
	busy     bool
	alert    *ports.Alert
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "voce@empresa.com"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "senha"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	return loginModel{email: email, password: password}
}

// update devuelve submit=true cuando hay que enviar las credenciales.
func (m loginModel) update(msg tea.KeyMsg) (loginModel, tea.Cmd, bool) {
	if m.alert != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = nil
		}
		return m, nil, false
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		return m.toggleFocus(), nil, false
	case "enter":
		if m.busy {
			return m, nil, false
		}
		m.busy = true
		return m, nil, true
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd, false
}

func (m loginModel) toggleFocus() loginModel {
	m.focus = 1 - m.focus
	if m.focus == 0 {
		m.password.Blur()
		m.email.Focus()
	} else {
		m.email.Blur()
		m.password.Focus()
	}
	return m
}

func (m loginModel) view(width, height int) string {
	if m.alert != nil {
		return overlay(width, height, renderModalBox(width, m.alert.Title, m.alert.Message+"\n\n"+keyHelp("enter", "ok")))
	}

	label := func(text string, focused bool) string {
		if focused {
			return focusedLabel.Render(text)
		}
		return labelStyle.Render(text)
	}
	entrar := "Entrar"
	if m.busy {
		entrar = "Entrando…"
	}
	body := strings.Join([]string{
		titleStyle.Render("Emprestei"),
		mutedStyle.Render("Empréstimos entre lojas"),
		"",
		label("E-mail", m.focus == 0) + m.email.View(),
		label("Senha", m.focus == 1) + m.password.View(),
		"",
		button(entrar, !m.busy),
		"",
		keyHelp("tab", "campo", "enter", "entrar", "ctrl+c", "fechar"),
	}, "\n")
	box := lipgloss.NewStyle().Padding(1, 2).Render(body)
	return overlay(width, height, box)
}
