package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// loanItem fila de la lista de empréstimos.
type loanItem struct{ loan entity.Loan }

func (i loanItem) FilterValue() string { return i.loan.Item }

func loanItems(ls []entity.Loan) []list.Item {
	items := make([]list.Item, 0, len(ls))
	for _, l := range ls {
		items = append(items, loanItem{loan: l})
	}
	return items
}

// loanLines texto de una fila: título, ruta, autoría y, si aplica, la baja.
func loanLines(l entity.Loan) []string {
	lines := []string{
		fmt.Sprintf("%s (%d)", l.Item, l.Quantity),
		fmt.Sprintf("De: %s | Para: %s", l.From, l.To),
		l.AuthorshipLine(),
	}
	if fin := l.FinalizationLine(); fin != "" {
		lines = append(lines, fin)
	}
	return lines
}

const loanRowHeight = 4

type loanDelegate struct{}

func (loanDelegate) Height() int                         { return loanRowHeight }
func (loanDelegate) Spacing() int                        { return 1 }
func (loanDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (loanDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(loanItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLoan(it.loan, index == m.Index()))
}

// renderLoan filas finalizadas tachadas y atenuadas; la seleccionada con marcador.
func renderLoan(l entity.Loan, selected bool) string {
	lines := loanLines(l)
	for len(lines) < loanRowHeight {
		lines = append(lines, "")
	}

	prefix := "  "
	if selected {
		prefix = "> "
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		p := prefix
		if i > 0 {
			p = "  "
		}
		switch {
		case l.IsFinalized() && i == 0:
			line = struckStyle.Render(line)
		case l.IsFinalized():
			line = finalizedLoanStyle.Render(line)
		case selected:
			line = selectedLoanStyle.Render(line)
		}
		out[i] = p + line
	}
	return strings.Join(out, "\n")
}

// storeItem opción del selector de destino.
type storeItem string

func (s storeItem) Title() string       { return string(s) }
func (s storeItem) Description() string { return "" }
func (s storeItem) FilterValue() string { return string(s) }

func storeItems(stores []string) []list.Item {
	items := make([]list.Item, 0, len(stores))
	for _, s := range stores {
		items = append(items, storeItem(s))
	}
	return items
}

func newLoanList() list.Model {
	l := list.New(nil, loanDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	return l
}

func newPickerList() list.Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)
	l := list.New(nil, d, 30, 8)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}
