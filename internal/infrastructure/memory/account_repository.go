package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo cuentas en memoria indexadas por uid.
type AccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]entity.Account
}

// NewAccountRepository crea el repositorio vacío.
func NewAccountRepository() *AccountRepo {
	return &AccountRepo{accounts: make(map[string]entity.Account)}
}

// Create persiste la cuenta; ErrEmailAlreadyExists si el email ya existe (sin distinguir mayúsculas).
func (r *AccountRepo) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) Update(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.accounts[a.ID] = *a
	return nil
}
