package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
	"github.com/jhoicas/emprestei/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase proveedor de identidad: alta de cuentas (fuera de banda), login y verificación de tokens.
type AuthUseCase struct {
	accounts repository.AccountRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(accounts repository.AccountRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{accounts: accounts, jwtCfg: jwtCfg}
}

// RegisterAccount crea una cuenta con password bcrypt. Devuelve ErrEmailAlreadyExists si el email existe.
func (uc *AuthUseCase) RegisterAccount(ctx context.Context, in dto.RegisterAccountRequest) (*dto.AccountResponse, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	uid := in.UID
	if uid == "" {
		uid = uuid.New().String()
	}
	now := time.Now()
	account := &entity.Account{
		ID:           uid,
		Email:        email,
		PasswordHash: string(hash),
		Status:       entity.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return &dto.AccountResponse{UID: account.ID, Email: account.Email, Status: account.Status, CreatedAt: account.CreatedAt}, nil
}

// Login verifica email/password y genera el JWT. Los strings llegan tal cual los escribió el usuario.
// Email desconocido y password incorrecto devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	account, err := uc.accounts.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if account.Status != entity.AccountStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, account.ID, account.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  dto.IdentityResponse{UID: account.ID, Email: account.Email},
	}, nil
}

// Verify valida el token y devuelve la identidad que transporta.
func (uc *AuthUseCase) Verify(token string) (*entity.Identity, error) {
	uid, email, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return &entity.Identity{UID: uid, Email: email}, nil
}
