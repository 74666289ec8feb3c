// Package report genera el reporte PDF de los empréstimos visibles para un usuario.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// TreeReader lectura puntual del árbol de datos.
type TreeReader interface {
	Get(ctx context.Context, path string) (entity.Snapshot, error)
}

// LoanReport datos que recibe el generador.
type LoanReport struct {
	Profile     entity.UserProfile
	Filter      loans.Filter
	Loans       []entity.Loan // ya filtrados, más recientes primero
	GeneratedAt time.Time
}

// Generator puerto de salida del documento.
type Generator interface {
	GenerateLoanReport(ctx context.Context, r LoanReport) ([]byte, error)
}

// LoanReportUseCase arma el reporte con las mismas reglas de alcance y filtro de la app.
type LoanReportUseCase struct {
	tree      TreeReader
	generator Generator
	log       zerolog.Logger
	now       func() time.Time
}

// NewLoanReportUseCase construye el caso de uso.
func NewLoanReportUseCase(tree TreeReader, generator Generator, log zerolog.Logger) *LoanReportUseCase {
	return &LoanReportUseCase{
		tree:      tree,
		generator: generator,
		log:       log.With().Str("component", "report").Logger(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LoanReportUseCase) WithClock(now func() time.Time) *LoanReportUseCase {
	uc.now = now
	return uc
}

// Build genera el PDF de los empréstimos de la tienda del usuario uid.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el usuario no tiene perfil.
func (uc *LoanReportUseCase) Build(ctx context.Context, uid string, filter loans.Filter) (pdfBytes []byte, filename string, err error) {
	profSnap, err := uc.tree.Get(ctx, entity.JoinPath("usuarios", uid))
	if err != nil {
		return nil, "", fmt.Errorf("reporte: leer perfil: %w", err)
	}
	if !profSnap.Exists() {
		return nil, "", domain.ErrNotFound
	}
	var profile entity.UserProfile
	if err := profSnap.Decode(&profile); err != nil {
		return nil, "", fmt.Errorf("reporte: %w", err)
	}

	loansSnap, err := uc.tree.Get(ctx, "emprestimos")
	if err != nil {
		return nil, "", fmt.Errorf("reporte: leer empréstimos: %w", err)
	}
	// registros ilegibles no impiden el reporte
	all, err := loans.Decode(loansSnap)
	if err != nil {
		uc.log.Warn().Err(err).Str("uid", uid).Int("incluidos", len(all)).Msg("empréstimos ilegíveis omitidos do reporte")
	}
	visible := loans.FilterByStatus(loans.Scope(all, profile.Store), filter)

	pdfBytes, err = uc.generator.GenerateLoanReport(ctx, LoanReport{
		Profile:     profile,
		Filter:      filter,
		Loans:       visible,
		GeneratedAt: uc.now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("emprestimos_%s_%s.pdf", slug(profile.Store), filter)
	return pdfBytes, filename, nil
}

func slug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "loja"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, s)
}
