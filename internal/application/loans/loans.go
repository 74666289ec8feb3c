// Package loans reúne las reglas puras sobre la lista de empréstimos: alcance por tienda,
// filtro por estado y candidatos de destino. Lo usan el front-end y el reporte PDF.
package loans

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Filter filtro de la lista visible.
type Filter string

const (
	FilterActive Filter = "ativos"
	FilterAll    Filter = "todos"
)

// ParseFilter interpreta el filtro recibido; cualquier valor desconocido es FilterActive.
func ParseFilter(s string) Filter {
	if Filter(s) == FilterAll {
		return FilterAll
	}
	return FilterActive
}

// Decode convierte el snapshot de emprestimos en registros en orden de inserción,
// con la clave como ID. Los registros ilegibles se omiten y se informan en el error.
func Decode(snap entity.Snapshot) ([]entity.Loan, error) {
	children, err := snap.Children()
	if err != nil {
		return nil, err
	}
	out := make([]entity.Loan, 0, len(children))
	var errs []error
	for _, c := range children {
		var l entity.Loan
		if err := c.Decode(&l); err != nil {
			errs = append(errs, fmt.Errorf("empréstimo %s: %w", c.Key(), err))
			continue
		}
		l.ID = c.Key()
		out = append(out, l)
	}
	return out, errors.Join(errs...)
}

// Scope devuelve los empréstimos donde store es origen o destino, del más reciente al más antiguo.
// all debe venir en orden de inserción.
func Scope(all []entity.Loan, store string) []entity.Loan {
	out := make([]entity.Loan, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].InvolvesStore(store) {
			out = append(out, all[i])
		}
	}
	return out
}

// FilterByStatus aplica el filtro conservando el orden.
func FilterByStatus(list []entity.Loan, f Filter) []entity.Loan {
	if f == FilterAll {
		return slices.Clone(list)
	}
	out := make([]entity.Loan, 0, len(list))
	for _, l := range list {
		if l.Status == entity.LoanStatusActive {
			out = append(out, l)
		}
	}
	return out
}

// SortStores ordena nombres de tienda con la colación pt-BR.
func SortStores(names []string) []string {
	out := slices.Clone(names)
	collate.New(language.BrazilianPortuguese, collate.IgnoreCase).SortStrings(out)
	return out
}

// VisibleStores tiendas de la empresa del perfil, ordenadas. Sin perfil o sin empresa registrada: vacío.
func VisibleStores(profile *entity.UserProfile, dir entity.StoreDirectory) []string {
	if profile == nil {
		return nil
	}
	return SortStores(dir.StoresOf(profile.Company))
}

// DestinationCandidates tiendas visibles excepto la propia.
func DestinationCandidates(visible []string, own string) []string {
	out := make([]string, 0, len(visible))
	for _, s := range visible {
		if s != own {
			out = append(out, s)
		}
	}
	return out
}
