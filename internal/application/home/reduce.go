package home

import (
	"slices"
	"strconv"

	"github.com/jhoicas/emprestei/internal/application/loans"
	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Reduce aplica un evento al estado y devuelve el nuevo estado y los efectos a ejecutar.
// No hace E/S: las marcas de tiempo llegan dentro de los eventos.
func Reduce(s State, e Event) (State, []Effect) {
	switch e := e.(type) {
	case ProfileChanged:
		return s.onProfile(e.Snapshot)
	case DirectoryChanged:
		return s.onDirectory(e.Snapshot)
	case LoansChanged:
		return s.onLoans(e.Snapshot)

	case FieldChanged:
		switch e.Field {
		case FieldItem:
			s.Form.Item = e.Value
		case FieldQuantity:
			s.Form.Quantity = e.Value
		case FieldFrom:
			s.Form.From = e.Value
		}
		s.Edits++
		return s, nil
	case FilterChanged:
		s.Filter = loans.ParseFilter(string(e.Filter))
		return s, nil

	case OpenPicker:
		s.PickerOpen = true
		return s, nil
	case ClosePicker:
		s.PickerOpen = false
		return s, nil
	case PickDestination:
		if !slices.Contains(s.DestinationCandidates(), e.Store) {
			return s, nil
		}
		s.Form.To = e.Store
		s.PickerOpen = false
		return s, nil

	case SelectLoan:
		l, ok := s.Loan(e.ID)
		if !ok {
			return s, nil
		}
		if l.IsFinalized() {
			return s.reject(alertFinalizedLocked, l.ID, domain.ErrLoanFinalized)
		}
		s.PromptID = l.ID
		return s, nil
	case ChooseAction:
		return s.onAction(e)

	case Submit:
		return s.onSubmit(e)
	case CancelEdit:
		s.Form = s.emptyForm()
		s.EditingID = ""
		return s, nil
	case DismissAlert:
		s.Alert = nil
		return s, nil

	case WriteCompleted:
		s.Pending = false
		if e.Err != nil {
			s.Alert = alert(e.Op.failureAlert())
			return s, nil
		}
		s.Alert = alert(e.Op.successAlert())
		s.Form = s.emptyForm()
		s.EditingID = ""
		return s, nil

	case SignOutRequested:
		return s, []Effect{SignOut{}}
	case SignOutCompleted:
		if e.Err != nil {
			s.Alert = alert(alertSignOutFailed)
		}
		return s, nil
	}
	return s, nil
}

func (s State) onProfile(snap entity.Snapshot) (State, []Effect) {
	if snap.Equal(s.seenProfile) {
		return s, nil
	}
	s.seenProfile = snap
	if !snap.Exists() {
		s.Form.From = ""
		return s, nil
	}
	var p entity.UserProfile
	if err := snap.Decode(&p); err != nil {
		return s, []Effect{LogError{Msg: "perfil ilegível", Err: err}}
	}
	s.Profile = &p
	s.Form.From = p.Store
	return s.rederive(), nil
}

func (s State) onDirectory(snap entity.Snapshot) (State, []Effect) {
	if snap.Equal(s.seenDir) {
		return s, nil
	}
	s.seenDir = snap
	var dir entity.StoreDirectory
	if err := snap.Decode(&dir); err != nil {
		s.rawDirectory = nil
		return s.rederive(), []Effect{LogError{Msg: "diretório de lojas ilegível", Err: err}}
	}
	s.rawDirectory = dir
	return s.rederive(), nil
}

func (s State) onLoans(snap entity.Snapshot) (State, []Effect) {
	if snap.Equal(s.seenLoans) {
		return s, nil
	}
	s.seenLoans = snap
	list, err := loans.Decode(snap)
	s.rawLoans = list
	s = s.rederive()
	if err != nil {
		return s, []Effect{LogError{Msg: "empréstimos ilegíveis", Err: err}}
	}
	return s, nil
}

func (s State) rederive() State {
	d := Derive(s.Profile, s.rawDirectory, s.rawLoans)
	s.Stores = d.Stores
	s.Loans = d.Loans
	return s
}

func (s State) onAction(e ChooseAction) (State, []Effect) {
	id := s.PromptID
	s.PromptID = ""
	if id == "" || e.Action == ActionCancel {
		return s, nil
	}
	l, ok := s.Loan(id)
	if !ok {
		return s, nil
	}
	if l.IsFinalized() {
		return s.reject(alertFinalizedLocked, l.ID, domain.ErrLoanFinalized)
	}

	switch e.Action {
	case ActionEdit:
		s.Form = Form{
			Item:     l.Item,
			Quantity: strconv.Itoa(l.Quantity),
			From:     s.Profile.HomeStore(),
			To:       l.To,
		}
		s.EditingID = l.ID
		return s, nil
	case ActionFinalize:
		if s.Pending {
			return s.reject(alertWritePending, l.ID, domain.ErrWritePending)
		}
		s.Pending = true
		return s, []Effect{UpdateLoan{
			Op:     OpFinalize,
			ID:     l.ID,
			Fields: entity.FinalizeFields(s.Profile.Attribution(), e.At),
		}}
	}
	return s, nil
}

func (s State) onSubmit(e Submit) (State, []Effect) {
	if s.Pending {
		return s.reject(alertWritePending, s.EditingID, domain.ErrWritePending)
	}
	missing := alertMissingFields
	if s.Editing() {
		missing = alertMissingFieldsEditing
	}
	f := s.Form
	if f.Item == "" || f.Quantity == "" || f.From == "" || f.To == "" {
		s.Alert = alert(missing)
		return s, nil
	}
	qty, err := entity.ParseQuantity(f.Quantity)
	if err != nil {
		s.Alert = alert(missing)
		return s, nil
	}
	author := s.Profile.Attribution()

	if !s.Editing() {
		s.Pending = true
		loan := entity.NewLoan("", f.Item, qty, f.From, f.To, author, e.At)
		return s, []Effect{CreateLoan{Loan: *loan}}
	}

	if l, ok := s.Loan(s.EditingID); ok && l.IsFinalized() {
		return s.reject(alertFinalizedLocked, l.ID, domain.ErrLoanFinalized)
	}
	s.Pending = true
	return s, []Effect{UpdateLoan{
		Op:     OpEdit,
		ID:     s.EditingID,
		Fields: entity.EditFields(f.Item, qty, f.From, f.To, author, e.At),
	}}
}

func (s State) reject(a ports.Alert, loanID string, err error) (State, []Effect) {
	s.Alert = alert(a)
	return s, []Effect{Rejected{LoanID: loanID, Err: err}}
}

func alert(a ports.Alert) *ports.Alert {
	return &a
}
