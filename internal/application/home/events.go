package home

import (
	"time"

	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Event entrada del reductor: notificaciones de suscripción, intenciones del usuario
// y resultados de escrituras.
type Event interface{ isEvent() }

// ProfileChanged nuevo valor de usuarios/{uid}.
type ProfileChanged struct{ Snapshot entity.Snapshot }

// DirectoryChanged nuevo valor de lojas.
type DirectoryChanged struct{ Snapshot entity.Snapshot }

// LoansChanged nuevo valor de emprestimos.
type LoansChanged struct{ Snapshot entity.Snapshot }

// Field campo editable del formulario.
type Field int

const (
	FieldItem Field = iota + 1
	FieldQuantity
	FieldFrom
)

// FieldChanged el usuario escribió en un campo.
type FieldChanged struct {
	Field Field
	Value string
}

// FilterChanged cambio de filtro Ativos/Todos.
type FilterChanged struct{ Filter loans.Filter }

type (
	// OpenPicker abre el selector de destino.
	OpenPicker struct{}
	// ClosePicker cierra el selector sin elegir.
	ClosePicker struct{}
)

// PickDestination elige una tienda del selector.
type PickDestination struct{ Store string }

// SelectLoan el usuario tocó un empréstimo de la lista.
type SelectLoan struct{ ID string }

// Action opción del menú de un empréstimo.
type Action int

const (
	ActionCancel Action = iota
	ActionEdit
	ActionFinalize
)

// ChooseAction respuesta al menú abierto por SelectLoan.
type ChooseAction struct {
	Action Action
	At     time.Time
}

// Submit envía el formulario (registrar o atualizar según el modo).
type Submit struct{ At time.Time }

type (
	// CancelEdit sale del modo edición.
	CancelEdit struct{}
	// DismissAlert cierra el aviso visible.
	DismissAlert struct{}
	// SignOutRequested el usuario pidió salir.
	SignOutRequested struct{}
)

// WriteCompleted resultado de una escritura lanzada por el reductor.
type WriteCompleted struct {
	Op  Op
	Err error
}

// SignOutCompleted resultado del cierre de sesión.
type SignOutCompleted struct{ Err error }

func (ProfileChanged) isEvent()   {}
func (DirectoryChanged) isEvent() {}
func (LoansChanged) isEvent()     {}
func (FieldChanged) isEvent()     {}
func (FilterChanged) isEvent()    {}
func (OpenPicker) isEvent()       {}
func (ClosePicker) isEvent()      {}
func (PickDestination) isEvent()  {}
func (SelectLoan) isEvent()       {}
func (ChooseAction) isEvent()     {}
func (Submit) isEvent()           {}
func (CancelEdit) isEvent()       {}
func (DismissAlert) isEvent()     {}
func (SignOutRequested) isEvent() {}
func (WriteCompleted) isEvent()   {}
func (SignOutCompleted) isEvent() {}

// Effect trabajo que el controlador ejecuta fuera del reductor.
type Effect interface{ isEffect() }

// CreateLoan escribe un empréstimo nuevo bajo una clave generada.
type CreateLoan struct{ Loan entity.Loan }

// UpdateLoan actualización parcial de emprestimos/{ID}.
type UpdateLoan struct {
	Op     Op
	ID     string
	Fields map[string]any
}

// SignOut cierra la sesión en el proveedor de identidad.
type SignOut struct{}

// LogError registra un error sin cambiar el estado.
type LogError struct {
	Msg string
	Err error
}

// Rejected operación rechazada por una regla de la pantalla (domain.ErrLoanFinalized,
// domain.ErrWritePending). El aviso ya está en el estado; solo queda registrarla.
type Rejected struct {
	LoanID string
	Err    error
}

func (CreateLoan) isEffect() {}
func (UpdateLoan) isEffect() {}
func (SignOut) isEffect()    {}
func (LogError) isEffect()   {}
func (Rejected) isEffect()   {}
