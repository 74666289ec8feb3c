package home

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/ports"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Controller ejecuta el reductor en una sola goroutine. Suscripciones, intenciones del usuario
// y resultados de escrituras llegan como eventos por el mismo canal.
type Controller struct {
	db  ports.Database
	idp ports.IdentityProvider
	log zerolog.Logger

	events   chan Event
	stopped  chan struct{}
	onChange func(State)
	state    State
}

// NewController crea el controlador de la pantalla principal de uid.
// onChange se llama desde la goroutine del controlador tras cada evento que cambia el estado.
func NewController(uid string, db ports.Database, idp ports.IdentityProvider, log zerolog.Logger, onChange func(State)) *Controller {
	if onChange == nil {
		onChange = func(State) {}
	}
	return &Controller{
		db:       db,
		idp:      idp,
		log:      log.With().Str("component", "home").Str("uid", uid).Logger(),
		events:   make(chan Event, 64),
		stopped:  make(chan struct{}),
		onChange: onChange,
		state:    NewState(uid),
	}
}

// Run se suscribe a perfil, lojas y emprestimos y procesa eventos hasta que ctx se cancele.
// Al salir libera las suscripciones.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)
	subs := []struct {
		path string
		wrap func(entity.Snapshot) Event
	}{
		{ProfilePath(c.state.UID), func(s entity.Snapshot) Event { return ProfileChanged{Snapshot: s} }},
		{PathStores, func(s entity.Snapshot) Event { return DirectoryChanged{Snapshot: s} }},
		{PathLoans, func(s entity.Snapshot) Event { return LoansChanged{Snapshot: s} }},
	}
	for _, sub := range subs {
		wrap := sub.wrap
		unsubscribe, err := c.db.Subscribe(ctx, sub.path, func(s entity.Snapshot) {
			c.post(ctx, wrap(s))
		})
		if err != nil {
			return fmt.Errorf("suscribir %s: %w", sub.path, err)
		}
		defer unsubscribe()
	}

	c.onChange(c.state)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-c.events:
			c.handle(ctx, e)
		}
	}
}

// Dispatch encola una intención del usuario. No bloquea más allá de la vida de ctx ni
// después de que Run termine.
func (c *Controller) Dispatch(ctx context.Context, e Event) {
	c.post(ctx, e)
}

func (c *Controller) post(ctx context.Context, e Event) {
	select {
	case c.events <- e:
	case <-ctx.Done():
	case <-c.stopped:
	}
}

func (c *Controller) handle(ctx context.Context, e Event) {
	next, effects := Reduce(c.state, e)
	c.state = next
	for _, eff := range effects {
		c.run(ctx, eff)
	}
	c.onChange(c.state)
}

func (c *Controller) run(ctx context.Context, eff Effect) {
	// Las escrituras en curso terminan aunque la pantalla se cierre; ctx solo acota post.
	opCtx := context.WithoutCancel(ctx)
	switch eff := eff.(type) {
	case LogError:
		c.log.Error().Err(eff.Err).Msg(eff.Msg)
	case Rejected:
		c.log.Warn().Err(eff.Err).Str("loan_id", eff.LoanID).Msg("operação rejeitada")
	case CreateLoan:
		go func() {
			loan := eff.Loan
			loan.ID = c.db.NewKey(PathLoans)
			err := c.db.Set(opCtx, entity.JoinPath(PathLoans, loan.ID), loan)
			if err != nil {
				c.log.Error().Err(err).Msg("Erro ao registrar empréstimo")
			}
			c.post(ctx, WriteCompleted{Op: OpCreate, Err: err})
		}()
	case UpdateLoan:
		go func() {
			err := c.db.Update(opCtx, entity.JoinPath(PathLoans, eff.ID), eff.Fields)
			if err != nil {
				c.log.Error().Err(err).Str("loan_id", eff.ID).Msgf("Erro ao %s empréstimo", eff.Op)
			}
			c.post(ctx, WriteCompleted{Op: eff.Op, Err: err})
		}()
	case SignOut:
		go func() {
			err := c.idp.SignOut(opCtx)
			if err != nil {
				c.log.Error().Err(err).Msg("Erro ao fazer logout")
			}
			c.post(ctx, SignOutCompleted{Err: err})
		}()
	}
}
