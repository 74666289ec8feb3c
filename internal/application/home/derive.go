package home

import (
	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Derived listas calculadas a partir del perfil y de los valores crudos.
type Derived struct {
	Stores []string
	Loans  []entity.Loan
}

// Derive recalcula tiendas visibles y empréstimos de la tienda propia.
// all debe venir en orden de inserción.
func Derive(profile *entity.UserProfile, dir entity.StoreDirectory, all []entity.Loan) Derived {
	return Derived{
		Stores: loans.VisibleStores(profile, dir),
		Loans:  loans.Scope(all, profile.HomeStore()),
	}
}
