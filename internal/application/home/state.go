// Package home contiene la lógica de la pantalla principal: estado, reductor puro y el
// controlador que conecta el reductor con la base de datos en tiempo real.
package home

import (
	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Rutas observadas por la pantalla principal.
const (
	PathStores = "lojas"
	PathLoans  = "emprestimos"
)

// ProfilePath ruta del perfil del usuario.
func ProfilePath(uid string) string {
	return entity.JoinPath("usuarios", uid)
}

// Form campos del formulario. To solo se cambia con el selector de destino.
type Form struct {
	Item     string
	Quantity string
	From     string
	To       string
}

// State estado completo de la pantalla. Solo lo modifica Reduce.
type State struct {
	UID string

	// Perfil en caché. Si el perfil desaparece se conserva el último conocido.
	Profile *entity.UserProfile

	// Valores crudos de las suscripciones, para recalcular al cambiar el perfil.
	seenProfile  entity.Snapshot
	rawDirectory entity.StoreDirectory
	rawLoans     []entity.Loan
	seenLoans    entity.Snapshot
	seenDir      entity.Snapshot

	// Derivados.
	Stores []string      // tiendas de la empresa del perfil, ordenadas
	Loans  []entity.Loan // empréstimos de la tienda propia, más recientes primero

	Filter    loans.Filter
	Form      Form
	EditingID string
	Edits     uint64 // FieldChanged aplicados; la TUI lo compara con los que envió

	PickerOpen bool
	PromptID   string // empréstimo con el menú de acciones abierto
	Pending    bool   // escritura en curso
	Alert      *ports.Alert
}

// NewState estado inicial de la pantalla para uid.
func NewState(uid string) State {
	return State{UID: uid, Filter: loans.FilterActive}
}

// Editing true en modo edición.
func (s State) Editing() bool {
	return s.EditingID != ""
}

// VisibleLoans empréstimos tras aplicar el filtro.
func (s State) VisibleLoans() []entity.Loan {
	return loans.FilterByStatus(s.Loans, s.Filter)
}

// DestinationCandidates opciones del selector de destino.
func (s State) DestinationCandidates() []string {
	if s.Profile == nil {
		return nil
	}
	return loans.DestinationCandidates(s.Stores, s.Profile.Store)
}

// SubmitLabel texto del botón principal.
func (s State) SubmitLabel() string {
	if s.Editing() {
		return "Atualizar Empréstimo"
	}
	return "Registrar Empréstimo"
}

// Loan busca un empréstimo visible por id.
func (s State) Loan(id string) (entity.Loan, bool) {
	for _, l := range s.Loans {
		if l.ID == id {
			return l, true
		}
	}
	return entity.Loan{}, false
}

func (s State) emptyForm() Form {
	return Form{From: s.Profile.HomeStore()}
}
