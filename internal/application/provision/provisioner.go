package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// AccountRegistrar alta de cuentas; auth.AuthUseCase lo implementa.
type AccountRegistrar interface {
	RegisterAccount(ctx context.Context, in dto.RegisterAccountRequest) (*dto.AccountResponse, error)
}

// TreeWriter escritura en el árbol; realtime.Service lo implementa.
type TreeWriter interface {
	Set(ctx context.Context, path string, value json.RawMessage) error
}

// Summary resultado de Apply.
type Summary struct {
	Stores          int
	AccountsCreated int
	AccountsExisted int
	Profiles        int
}

// Provisioner aplica un Fixture. Es idempotente: las cuentas existentes se conservan y los
// perfiles y lojas se sobreescriben.
type Provisioner struct {
	accounts AccountRegistrar
	tree     TreeWriter
	log      zerolog.Logger
}

// NewProvisioner crea el provisionador.
func NewProvisioner(accounts AccountRegistrar, tree TreeWriter, log zerolog.Logger) *Provisioner {
	return &Provisioner{accounts: accounts, tree: tree, log: log.With().Str("component", "provision").Logger()}
}

// Apply escribe el directorio de lojas, las cuentas y los perfiles.
func (p *Provisioner) Apply(ctx context.Context, f *Fixture) (Summary, error) {
	var sum Summary
	for company, stores := range f.Companies {
		for _, store := range stores {
			path := entity.JoinPath(PathStores, company, store)
			if err := p.tree.Set(ctx, path, json.RawMessage("true")); err != nil {
				return sum, fmt.Errorf("escribir %s: %w", path, err)
			}
			sum.Stores++
		}
	}

	for _, u := range f.Users {
		_, err := p.accounts.RegisterAccount(ctx, dto.RegisterAccountRequest{UID: u.UID, Email: u.Email, Password: u.Password})
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			p.log.Warn().Str("email", u.Email).Msg("cuenta ya existente, se conserva")
			sum.AccountsExisted++
		case err != nil:
			return sum, fmt.Errorf("registrar %s: %w", u.Email, err)
		default:
			sum.AccountsCreated++
		}

		profile, err := json.Marshal(u.Profile())
		if err != nil {
			return sum, err
		}
		path := entity.JoinPath(PathUsers, u.UID)
		if err := p.tree.Set(ctx, path, profile); err != nil {
			return sum, fmt.Errorf("escribir %s: %w", path, err)
		}
		sum.Profiles++
	}

	p.log.Info().
		Int("lojas", sum.Stores).
		Int("contas_criadas", sum.AccountsCreated).
		Int("contas_existentes", sum.AccountsExisted).
		Int("perfis", sum.Profiles).
		Msg("provisión aplicada")
	return sum, nil
}

// Raíces del árbol escritas por la provisión.
const (
	PathStores = "lojas"
	PathUsers  = "usuarios"
)
