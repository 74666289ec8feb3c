package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// LoanStatus estado de un empréstimo. Solo transiciona ativo -> finalizado.
type LoanStatus string

// Estados válidos de Loan.
const (
	LoanStatusActive    LoanStatus = "ativo"
	LoanStatusFinalized LoanStatus = "finalizado"
)

// AnonymousAuthor atribución usada cuando el usuario no tiene perfil.
const AnonymousAuthor = "Anônimo"

// TimestampLayout formato legible (pt-BR) de data, dataEdicao y dataFinalizacao.
const TimestampLayout = "02/01/2006 15:04:05"

// Loan representa un préstamo de ítems entre dos tiendas (emprestimos/{id}).
// Los tags JSON siguen el esquema persistido en el árbol.
type Loan struct {
	ID          string     `json:"id"`
	Item        string     `json:"item"`
	Quantity    int        `json:"quantidade"`
	From        string     `json:"de"`
	To          string     `json:"para"`
	Status      LoanStatus `json:"status"`
	CreatedBy   string     `json:"criadoPor,omitempty"`
	CreatedAt   string     `json:"data,omitempty"`
	EditedBy    string     `json:"editadoPor,omitempty"`
	EditedAt    string     `json:"dataEdicao,omitempty"`
	FinalizedBy string     `json:"finalizadoPor,omitempty"`
	FinalizedAt string     `json:"dataFinalizacao,omitempty"`
}

// UnmarshalJSON acepta quantidade como número o como texto ("3", "3 cx"); cualquier otra
// forma deja Quantity en 0 sin descartar el registro.
func (l *Loan) UnmarshalJSON(data []byte) error {
	type plain Loan
	var raw struct {
		plain
		Quantity json.RawMessage `json:"quantidade"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Loan(raw.plain)
	l.Quantity = looseQuantity(raw.Quantity)
	return nil
}

func looseQuantity(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if q, err := ParseQuantity(s); err == nil {
			return q
		}
	}
	return 0
}

// IsFinalized indica si el préstamo ya fue dado de baja (inmutable desde la UI).
func (l *Loan) IsFinalized() bool {
	return l.Status == LoanStatusFinalized
}

// InvolvesStore true si la tienda es origen o destino del préstamo.
// Una tienda vacía nunca ve préstamos.
func (l *Loan) InvolvesStore(store string) bool {
	if store == "" {
		return false
	}
	return l.From == store || l.To == store
}

// NewLoan arma un préstamo activo listo para escribirse bajo la clave id.
func NewLoan(id, item string, quantity int, from, to, author string, at time.Time) *Loan {
	return &Loan{
		ID:        id,
		Item:      item,
		Quantity:  quantity,
		From:      from,
		To:        to,
		Status:    LoanStatusActive,
		CreatedBy: author,
		CreatedAt: FormatTimestamp(at),
	}
}

// EditFields campos de la actualización parcial de una edición. No toca status.
func EditFields(item string, quantity int, from, to, author string, at time.Time) map[string]any {
	return map[string]any{
		"item":       item,
		"quantidade": quantity,
		"de":         from,
		"para":       to,
		"editadoPor": author,
		"dataEdicao": FormatTimestamp(at),
	}
}

// FinalizeFields campos de la actualización parcial que finaliza un préstamo.
func FinalizeFields(author string, at time.Time) map[string]any {
	return map[string]any{
		"status":          string(LoanStatusFinalized),
		"finalizadoPor":   author,
		"dataFinalizacao": FormatTimestamp(at),
	}
}

// FormatTimestamp devuelve la marca de tiempo legible usada en los registros.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseQuantity convierte el texto del formulario a entero tomando el prefijo numérico
// (mismo criterio que parseInt: "3 cx" -> 3). Error si no hay dígitos o el valor no es > 0.
func ParseQuantity(s string) (int, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("quantidade %q sem dígitos", s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("quantidade %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("quantidade deve ser maior que zero: %d", n)
	}
	return n, nil
}

// AuthorshipLine línea de autoría mostrada en la lista: la edición tiene prioridad sobre la creación.
func (l *Loan) AuthorshipLine() string {
	switch {
	case l.EditedBy != "":
		return fmt.Sprintf("Editado por %s em %s", l.EditedBy, l.EditedAt)
	case l.CreatedBy != "":
		return fmt.Sprintf("Criado por %s em %s", l.CreatedBy, l.CreatedAt)
	}
	return "Criado em: " + l.CreatedAt
}

// FinalizationLine línea de baja; vacía si el préstamo sigue activo.
func (l *Loan) FinalizationLine() string {
	if !l.IsFinalized() {
		return ""
	}
	return fmt.Sprintf("Finalizado por %s em %s", l.FinalizedBy, l.FinalizedAt)
}
