package home

import "github.com/jhoicas/emprestei/internal/application/ports"

// Avisos mostrados por la pantalla principal.
var (
	alertMissingFields        = ports.Alert{Title: "Erro", Message: "Por favor, preencha todos os campos."}
	alertMissingFieldsEditing = ports.Alert{Title: "Erro", Message: "Por favor, preencha todos os campos e selecione um item para editar."}
	alertFinalizedLocked      = ports.Alert{Title: "Aviso", Message: "Não é possível editar ou dar baixa em empréstimos finalizados."}
	alertWritePending         = ports.Alert{Title: "Aviso", Message: "Aguarde o término da operação anterior."}
	alertSignOutFailed        = ports.Alert{Title: "Erro", Message: "Houve um problema ao sair."}
)

// Op operación de escritura sobre un empréstimo.
type Op int

const (
	OpCreate Op = iota + 1
	OpEdit
	OpFinalize
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "registrar"
	case OpEdit:
		return "atualizar"
	case OpFinalize:
		return "finalizar"
	}
	return "desconhecida"
}

func (o Op) successAlert() ports.Alert {
	switch o {
	case OpEdit:
		return ports.Alert{Title: "Sucesso!", Message: "Empréstimo atualizado com sucesso!"}
	case OpFinalize:
		return ports.Alert{Title: "Sucesso!", Message: "Empréstimo finalizado com sucesso!"}
	}
	return ports.Alert{Title: "Sucesso!", Message: "Empréstimo registrado!"}
}

func (o Op) failureAlert() ports.Alert {
	return ports.Alert{Title: "Erro", Message: "Houve um problema ao " + o.String() + " o empréstimo."}
}
