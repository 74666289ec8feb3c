// Package pdf implementa el reporte de empréstimos en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Loja + Empresa        │  Filtro + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Qtd | Item | De | Para | Status | Registro           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: ativos / finalizados / total                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/application/report"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 231, Green: 76, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLoanReport implementa report.Generator usando Maroto v2.
type MarotoLoanReport struct{}

// NewMarotoLoanReport construye el generador.
func NewMarotoLoanReport() *MarotoLoanReport { return &MarotoLoanReport{} }

// GenerateLoanReport genera el PDF y devuelve sus bytes.
func (g *MarotoLoanReport) GenerateLoanReport(_ context.Context, r report.LoanReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Empréstimos - "+r.Profile.Store, true).
		WithAuthor(r.Profile.Attribution(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(r.Loans) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Nenhum empréstimo encontrado.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	m.AddRows(tableDetailRows(r.Loans)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(r.Loans))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: loja + empresa (izq) y filtro + fecha (der).
func headerRow(r report.LoanReport) core.Row {
	filtro := "Ativos"
	if r.Filter == loans.FilterAll {
		filtro = "Todos"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(r.Profile.Store, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+nonEmpty(r.Profile.Company, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RELATÓRIO DE EMPRÉSTIMOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Filtro: "+filtro, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Gerado em: "+entity.FormatTimestamp(r.GeneratedAt), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Item", 3, align.Left),
		h("De", 2, align.Left),
		h("Para", 2, align.Left),
		h("Status", 1, align.Center),
		h("Registro", 3, align.Left),
	)
}

// tableDetailRows: una fila por empréstimo; los finalizados se marcan en rojo.
func tableDetailRows(list []entity.Loan) []core.Row {
	result := make([]core.Row, 0, len(list))
	for _, l := range list {
		statusColor := colorPrimary
		if l.IsFinalized() {
			statusColor = colorRed
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		result = append(result, row.New(9).Add(
			cell(strconv.Itoa(l.Quantity), 1, align.Center),
			cell(l.Item, 3, align.Left),
			cell(l.From, 2, align.Left),
			cell(l.To, 2, align.Left),
			col.New(1).Add(text.New(string(l.Status), props.Text{
				Size: 8, Align: align.Center, Top: 1, Color: statusColor,
			})),
			col.New(3).Add(text.New(recordText(l), props.Text{
				Size: 7, Top: 1, Left: 1, Color: colorGray,
			})),
		))
	}
	return result
}

func summaryRow(list []entity.Loan) core.Row {
	var active, finalized int
	for _, l := range list {
		if l.IsFinalized() {
			finalized++
		} else {
			active++
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(label(fmt.Sprintf("Ativos: %d   |   Finalizados: %d   |   Total: %d",
			active, finalized, len(list)))),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// recordText autoría y, si corresponde, baja del empréstimo.
func recordText(l entity.Loan) string {
	s := l.AuthorshipLine()
	if f := l.FinalizationLine(); f != "" {
		s += "\n" + f
	}
	return s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
