package entity

import "time"

// Estados de Account.
const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Account credencial del proveedor de identidad. El uid es el mismo que indexa usuarios/{uid}.
type Account struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Status       string // active, disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity lo que entrega el inicio de sesión y transporta el flujo de estado de auth.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
