package tui

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/internal/application/home"
	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/application/session"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type recorder struct {
	events []home.Event
}

func (r *recorder) Dispatch(_ context.Context, e home.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) last() home.Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type fakeAuth struct {
	email, password string
	alert           *ports.Alert
}

func (f *fakeAuth) Submit(_ context.Context, email, password string) *ports.Alert {
	f.email, f.password = email, password
	return f.alert
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m homeModel, text string) homeModel {
	for _, r := range text {
		m, _ = m.update(key(string(r)))
	}
	return m
}

// anaState estado de Ana con dos empréstimos (uno finalizado) ya derivado por el reductor.
func anaState(t *testing.T) home.State {
	t.Helper()
	s, _ := home.Reduce(home.NewState("u1"), home.ProfileChanged{Snapshot: entity.Snapshot{
		Path: "usuarios/u1", Value: json.RawMessage(`{"nome":"Ana","loja":"A","empresa":"X"}`),
	}})
	s, _ = home.Reduce(s, home.DirectoryChanged{Snapshot: entity.Snapshot{
		Path: "lojas", Value: json.RawMessage(`{"X":{"A":true,"B":true,"C":true}}`),
	}})
	s, _ = home.Reduce(s, home.LoansChanged{Snapshot: entity.Snapshot{
		Path: "emprestimos", Value: json.RawMessage(`{
			"k1":{"item":"Sal","quantidade":1,"de":"A","para":"B","status":"finalizado","finalizadoPor":"Ana - A","dataFinalizacao":"18/10/2026 10:00:00"},
			"k2":{"item":"Maionese","quantidade":3,"de":"A","para":"C","status":"ativo","criadoPor":"Ana - A","data":"19/10/2026 08:00:00"}
		}`),
	}})
	return s
}

func newTestHome(t *testing.T) (homeModel, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := newHomeModel(context.Background(), "u1", rec, func() time.Time { return fixedNow }, 100, 40)
	return m.apply(anaState(t)), rec
}

func TestLoanLines(t *testing.T) {
	active := entity.Loan{Item: "Maionese", Quantity: 3, From: "A", To: "B", Status: entity.LoanStatusActive,
		CreatedBy: "Ana - A", CreatedAt: "19/10/2026 08:00:00"}
	assert.Equal(t, []string{
		"Maionese (3)",
		"De: A | Para: B",
		"Criado por Ana - A em 19/10/2026 08:00:00",
	}, loanLines(active))

	closed := active
	closed.Status, closed.FinalizedBy, closed.FinalizedAt = entity.LoanStatusFinalized, "Bia - B", "19/10/2026 09:00:00"
	lines := loanLines(closed)
	require.Len(t, lines, 4)
	assert.Equal(t, "Finalizado por Bia - B em 19/10/2026 09:00:00", lines[3])
}

func TestRenderLoan_MarcaSeleccion(t *testing.T) {
	l := entity.Loan{Item: "Sal", Quantity: 1, From: "A", To: "B", Status: entity.LoanStatusActive}
	out := renderLoan(l, true)
	assert.True(t, strings.HasPrefix(out, "> "))
	assert.Len(t, strings.Split(out, "\n"), loanRowHeight)
	assert.Contains(t, renderLoan(l, false), "De: A | Para: B")
}

func TestRenderModalBox(t *testing.T) {
	out := renderModalBox(80, "Erro de Login", "Verifique seu e-mail e senha.")
	assert.Contains(t, out, "Erro de Login")
	assert.Contains(t, out, "Verifique seu e-mail e senha.")

	// antes del primer WindowSizeMsg el mensaje no se parte
	assert.Contains(t, renderModalBox(0, "Erro de Login", "Verifique seu e-mail e senha."), "Verifique seu e-mail e senha.")
}

func TestApp_LoginEnviaCredencialesYMuestraAviso(t *testing.T) {
	auth := &fakeAuth{alert: &ports.Alert{Title: "Erro de Login", Message: "Verifique seu e-mail e senha."}}
	var model tea.Model = New(context.Background(), auth)
	assert.Contains(t, model.View(), "Carregando")

	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(viewMsg{})
	for _, r := range "ana@x.com" {
		model, _ = model.Update(key(string(r)))
	}
	model, _ = model.Update(key("tab"))
	for _, r := range "segredo" {
		model, _ = model.Update(key(string(r)))
	}
	assert.NotContains(t, model.View(), "segredo")

	model, cmd := model.Update(key("enter"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "ana@x.com", auth.email)
	assert.Equal(t, "segredo", auth.password)

	model, _ = model.Update(msg)
	assert.Contains(t, model.View(), "Verifique seu e-mail e senha.")

	model, _ = model.Update(key("enter"))
	assert.NotContains(t, model.View(), "Verifique seu e-mail e senha.")
}

func TestApp_DescartaEstadoDeOtroUsuario(t *testing.T) {
	app := New(context.Background(), &fakeAuth{})
	app.screen = screenHome
	app.home = newHomeModel(context.Background(), "u1", &recorder{}, time.Now, 80, 30)

	other := home.NewState("u2")
	other.Alert = &ports.Alert{Title: "X", Message: "de outro usuário"}
	model, _ := app.Update(stateMsg{state: other})
	assert.NotContains(t, model.View(), "de outro usuário")
}

func TestHome_TecleoEnviaFieldChanged(t *testing.T) {
	m, rec := newTestHome(t)
	m = typeText(m, "Sal")

	require.Len(t, rec.events, 3)
	assert.Equal(t, home.FieldChanged{Field: home.FieldItem, Value: "Sal"}, rec.last())
	assert.Equal(t, uint64(3), m.sent)
}

func TestHome_EstadoAtrasadoNoPisaLoTecleado(t *testing.T) {
	m, _ := newTestHome(t)
	s := m.state
	m = typeText(m, "Sa")

	// el controlador solo aplicó la primera tecla
	s.Form.Item, s.Edits = "S", 1
	m = m.apply(s)
	assert.Equal(t, "Sa", m.inputs[slotItem].Value())

	// tras un registro exitoso el formulario vuelve vacío con todo aplicado
	s.Form, s.Edits = home.Form{From: "A"}, 2
	m = m.apply(s)
	assert.Equal(t, "", m.inputs[slotItem].Value())
	assert.Equal(t, "A", m.inputs[slotFrom].Value())
}

func TestHome_AtajosDelFormulario(t *testing.T) {
	m, rec := newTestHome(t)

	m, _ = m.update(key("ctrl+s"))
	assert.Equal(t, home.Submit{At: fixedNow}, rec.last())

	m, _ = m.update(key("ctrl+f"))
	assert.Equal(t, home.FilterChanged{Filter: loans.FilterAll}, rec.last())

	n := len(rec.events)
	m, _ = m.update(key("ctrl+e"))
	assert.Len(t, rec.events, n, "sin edición no hay nada que cancelar")

	_, _ = m.update(key("ctrl+q"))
	assert.Equal(t, home.SignOutRequested{}, rec.last())
}

func TestHome_SelectorDeDestino(t *testing.T) {
	m, rec := newTestHome(t)
	for m.focus != slotTo {
		m, _ = m.update(key("tab"))
	}
	m, _ = m.update(key("enter"))
	assert.Equal(t, home.OpenPicker{}, rec.last())

	s := m.state
	s.PickerOpen = true
	m = m.apply(s)
	assert.Contains(t, m.view(), "Selecione a loja de destino")

	m, _ = m.update(key("enter"))
	assert.Equal(t, home.PickDestination{Store: "B"}, rec.last())

	_, _ = m.update(key("esc"))
	assert.Equal(t, home.ClosePicker{}, rec.last())
}

func TestHome_SeleccionYMenuDeAcciones(t *testing.T) {
	m, rec := newTestHome(t)
	for m.focus != slotLoans {
		m, _ = m.update(key("tab"))
	}
	// filtro ativos: solo Maionese
	m, _ = m.update(key("enter"))
	assert.Equal(t, home.SelectLoan{ID: "k2"}, rec.last())

	s := m.state
	s.PromptID = "k2"
	m = m.apply(s)
	assert.Contains(t, m.view(), "Finalizar")

	_, _ = m.update(key("f"))
	assert.Equal(t, home.ChooseAction{Action: home.ActionFinalize, At: fixedNow}, rec.last())
}

func TestHome_AvisoSeCierraConEnter(t *testing.T) {
	m, rec := newTestHome(t)
	s := m.state
	s.Alert = &ports.Alert{Title: "Sucesso!", Message: "Empréstimo registrado!"}
	m = m.apply(s)
	assert.Contains(t, m.view(), "Empréstimo registrado!")

	_, _ = m.update(key("x"))
	assert.Empty(t, rec.events)
	_, _ = m.update(key("enter"))
	assert.Equal(t, home.DismissAlert{}, rec.last())
}

func TestHome_VistaPrincipal(t *testing.T) {
	m, _ := newTestHome(t)
	out := m.view()
	assert.Contains(t, out, "Ana - A")
	assert.Contains(t, out, "Registrar Empréstimo")
	assert.Contains(t, out, "Maionese (3)")
	assert.NotContains(t, out, "Sal (1)")
	assert.NotContains(t, out, "Cancelar Edição")

	s := m.state
	s.EditingID = "k2"
	m = m.apply(s)
	out = m.view()
	assert.Contains(t, out, "Atualizar Empréstimo")
	assert.Contains(t, out, "Cancelar Edição")
}

func TestBridge_EntregaUltimoValor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBridge()
	b.SetView(session.View{})
	b.SetState(home.NewState("u1"))
	b.SetState(home.NewState("u2"))

	var (
		mu   sync.Mutex
		msgs []tea.Msg
	)
	go b.Pump(ctx, func(m tea.Msg) {
		mu.Lock()
		msgs = append(msgs, m)
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(msgs) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.IsType(t, viewMsg{}, msgs[0])
	assert.Equal(t, "u2", msgs[1].(stateMsg).state.UID)
}
