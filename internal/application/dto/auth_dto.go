package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResponse identidad autenticada (sin password).
type IdentityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string           `json:"token"`
	User  IdentityResponse `json:"user"`
}

// RegisterAccountRequest alta de cuenta fuera de banda (seed). Si UID está vacío se genera.
type RegisterAccountRequest struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse salida de una cuenta.
type AccountResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
