package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/emprestei/internal/application/home"
	"github.com/jhoicas/emprestei/internal/application/loans"
)

// dispatcher lo que la TUI necesita del controlador de la pantalla principal.
type dispatcher interface {
	Dispatch(ctx context.Context, e home.Event)
}

type slot int

const (
	slotItem slot = iota
	slotQuantity
	slotFrom
	slotTo
	slotLoans
	slotCount
)

var slotFields = map[slot]home.Field{
	slotItem:     home.FieldItem,
	slotQuantity: home.FieldQuantity,
	slotFrom:     home.FieldFrom,
}

// homeModel pantalla principal. El estado autoritativo vive en el controlador; aquí solo
// se guarda la última copia recibida y los widgets de entrada.
type homeModel struct {
	ctx  context.Context
	uid  string
	ctrl dispatcher
	now  func() time.Time

	state home.State
	ready bool
	sent  uint64 // FieldChanged enviados al controlador

	inputs [3]textinput.Model
	focus  slot
	loans  list.Model
	picker list.Model

	width, height int
}

func newHomeModel(ctx context.Context, uid string, ctrl dispatcher, now func() time.Time, width, height int) homeModel {
	m := homeModel{
		ctx:    ctx,
		uid:    uid,
		ctrl:   ctrl,
		now:    now,
		state:  home.NewState(uid),
		loans:  newLoanList(),
		picker: newPickerList(),
	}
	placeholders := [3]string{"Ex.: Maionese", "Ex.: 3", "Loja de origem"}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.Width = 32
		m.inputs[i] = in
	}
	m.inputs[slotItem].Focus()
	return m.resize(width, height)
}

func (m homeModel) resize(width, height int) homeModel {
	m.width, m.height = width, height
	// cabecera, formulario, botones, filtro y ayuda
	listH := height - 14
	if listH < loanRowHeight+1 {
		listH = loanRowHeight + 1
	}
	m.loans.SetSize(width, listH)
	return m
}

func (m homeModel) dispatch(e home.Event) {
	m.ctrl.Dispatch(m.ctx, e)
}

// apply recibe un estado nuevo. Los campos de texto solo se sobreescriben cuando el
// controlador ya aplicó todo lo tecleado; así no se pisa lo que el usuario sigue escribiendo.
func (m homeModel) apply(s home.State) homeModel {
	m.state = s
	m.ready = true
	if s.Edits == m.sent {
		values := [3]string{s.Form.Item, s.Form.Quantity, s.Form.From}
		for i, v := range values {
			if m.inputs[i].Value() != v {
				m.inputs[i].SetValue(v)
			}
		}
	}
	m.loans.SetItems(loanItems(s.VisibleLoans()))
	m.picker.SetItems(storeItems(s.DestinationCandidates()))
	return m
}

func (m homeModel) update(msg tea.KeyMsg) (homeModel, tea.Cmd) {
	s := m.state
	switch {
	case s.Alert != nil:
		switch msg.String() {
		case "enter", "esc", " ":
			m.dispatch(home.DismissAlert{})
		}
		return m, nil
	case s.PromptID != "":
		switch msg.String() {
		case "e":
			m.dispatch(home.ChooseAction{Action: home.ActionEdit, At: m.now()})
		case "f":
			m.dispatch(home.ChooseAction{Action: home.ActionFinalize, At: m.now()})
		case "c", "esc":
			m.dispatch(home.ChooseAction{Action: home.ActionCancel, At: m.now()})
		}
		return m, nil
	case s.PickerOpen:
		switch msg.String() {
		case "esc":
			m.dispatch(home.ClosePicker{})
			return m, nil
		case "enter":
			if it, ok := m.picker.SelectedItem().(storeItem); ok {
				m.dispatch(home.PickDestination{Store: string(it)})
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "tab", "down":
		if msg.String() == "down" && m.focus == slotLoans {
			break
		}
		return m.focusSlot((m.focus + 1) % slotCount)
	case "shift+tab", "up":
		if msg.String() == "up" && m.focus == slotLoans && m.loans.Index() > 0 {
			break
		}
		return m.focusSlot((m.focus + slotCount - 1) % slotCount)
	case "ctrl+s":
		m.dispatch(home.Submit{At: m.now()})
		return m, nil
	case "ctrl+e":
		if s.Editing() {
			m.dispatch(home.CancelEdit{})
		}
		return m, nil
	case "ctrl+f":
		next := loans.FilterAll
		if s.Filter == loans.FilterAll {
			next = loans.FilterActive
		}
		m.dispatch(home.FilterChanged{Filter: next})
		return m, nil
	case "ctrl+q":
		m.dispatch(home.SignOutRequested{})
		return m, nil
	}

	switch m.focus {
	case slotTo:
		switch msg.String() {
		case "enter", " ":
			m.dispatch(home.OpenPicker{})
		}
		return m, nil
	case slotLoans:
		if msg.String() == "enter" {
			if it, ok := m.loans.SelectedItem().(loanItem); ok {
				m.dispatch(home.SelectLoan{ID: it.loan.ID})
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.loans, cmd = m.loans.Update(msg)
		return m, cmd
	}

	if msg.String() == "enter" {
		m.dispatch(home.Submit{At: m.now()})
		return m, nil
	}
	in := &m.inputs[m.focus]
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if v := in.Value(); v != before {
		m.sent++
		m.dispatch(home.FieldChanged{Field: slotFields[m.focus], Value: v})
	}
	return m, cmd
}

func (m homeModel) focusSlot(next slot) (homeModel, tea.Cmd) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = next
	if next < slotTo {
		return m, m.inputs[next].Focus()
	}
	return m, nil
}

func (m homeModel) view() string {
	s := m.state
	switch {
	case s.Alert != nil:
		return overlay(m.width, m.height, renderModalBox(m.width, s.Alert.Title, s.Alert.Message+"\n\n"+keyHelp("enter", "ok")))
	case s.PromptID != "":
		l, _ := s.Loan(s.PromptID)
		body := strings.Join(loanLines(l), "\n") + "\n\n" + keyHelp("e", "Editar", "f", "Finalizar", "c", "Cancelar")
		return overlay(m.width, m.height, renderModalBox(m.width, "O que deseja fazer?", body))
	case s.PickerOpen:
		body := m.picker.View()
		if len(s.DestinationCandidates()) == 0 {
			body = mutedStyle.Render("Nenhuma loja disponível.")
		}
		return overlay(m.width, m.height, renderModalBox(m.width, "Selecione a loja de destino", body+"\n\n"+keyHelp("enter", "selecionar", "esc", "fechar")))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Emprestei") + "  " + mutedStyle.Render(m.header()) + "\n\n")

	labels := [3]string{"Item", "Quantidade", "De"}
	for i, in := range m.inputs {
		b.WriteString(m.label(labels[i], slot(i)) + in.View() + "\n")
	}
	to := s.Form.To
	if to == "" {
		to = mutedStyle.Render("Selecionar loja…")
	}
	b.WriteString(m.label("Para", slotTo) + "[ " + to + " ]\n\n")

	b.WriteString(button(s.SubmitLabel(), !s.Pending))
	if s.Editing() {
		b.WriteString("  " + button("Cancelar Edição", false))
	}
	if s.Pending {
		b.WriteString("  " + mutedStyle.Render("Salvando…"))
	}
	b.WriteString("\n\n")

	b.WriteString(button("Ativos", s.Filter == loans.FilterActive) + " " + button("Todos", s.Filter == loans.FilterAll) + "\n\n")
	if len(m.loans.Items()) == 0 {
		b.WriteString(mutedStyle.Render("Nenhum empréstimo.") + "\n")
	} else {
		b.WriteString(m.loans.View() + "\n")
	}

	help := []string{"tab", "campo", "enter", "selecionar", "ctrl+s", strings.ToLower(s.SubmitLabel()), "ctrl+f", "filtro"}
	if s.Editing() {
		help = append(help, "ctrl+e", "cancelar edição")
	}
	help = append(help, "ctrl+q", "sair")
	b.WriteString("\n" + keyHelp(help...))
	return b.String()
}

func (m homeModel) header() string {
	if !m.ready {
		return "Carregando…"
	}
	if m.state.Profile == nil {
		return "Perfil não encontrado"
	}
	return m.state.Profile.Attribution()
}

func (m homeModel) label(text string, s slot) string {
	if m.focus == s {
		return focusedLabel.Render(text)
	}
	return labelStyle.Render(text)
}
