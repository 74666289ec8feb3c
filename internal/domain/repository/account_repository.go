package repository

import (
	"context"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// AccountRepository define el puerto de persistencia para Account (DIP).
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	// FindByEmail devuelve nil, nil si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
}
