// Package realtime implementa la base de datos en árbol con rutas: lectura, escritura,
// actualización parcial, push con clave generada y suscripciones en vivo.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
	"github.com/jhoicas/emprestei/pkg/pushid"
)

// Service coordina repositorio y broadcaster. Las escrituras se serializan con mu y el fan-out
// se hace antes de liberar el lock, así cada suscriptor ve los cambios en orden de escritura.
type Service struct {
	repo repository.NodeRepository
	hub  *Broadcaster
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewService construye el servicio.
func NewService(repo repository.NodeRepository, log zerolog.Logger) *Service {
	log = log.With().Str("component", "realtime").Logger()
	return &Service{repo: repo, hub: NewBroadcaster(log), log: log}
}

// Get devuelve el snapshot actual de path.
func (s *Service) Get(ctx context.Context, path string) (entity.Snapshot, error) {
	p, err := cleanPath(path)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return s.read(ctx, p)
}

func (s *Service) read(ctx context.Context, p string) (entity.Snapshot, error) {
	leaves, err := s.repo.Leaves(ctx, p)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("leer %q: %w", p, err)
	}
	value, err := entity.Assemble(p, leaves)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return entity.Snapshot{Path: p, Value: value}, nil
}

// Set reemplaza el valor en path. null borra.
func (s *Service) Set(ctx context.Context, path string, value json.RawMessage) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	leaves, err := entity.Flatten(p, value)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return s.apply(ctx, []entity.NodeWrite{{Path: p, Leaves: leaves}})
}

// Update escribe cada campo como hijo de path (las claves pueden ser rutas relativas "a/b").
// Los hermanos no mencionados se conservan.
func (s *Service) Update(ctx context.Context, path string, fields map[string]json.RawMessage) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	writes := make([]entity.NodeWrite, 0, len(fields))
	for k, v := range fields {
		rel, err := entity.CleanPath(k)
		if err != nil || rel == "" {
			return fmt.Errorf("%w: campo %q", domain.ErrInvalidPath, k)
		}
		child := entity.JoinPath(p, rel)
		leaves, err := entity.Flatten(child, v)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		writes = append(writes, entity.NodeWrite{Path: child, Leaves: leaves})
	}
	return s.apply(ctx, writes)
}

// Push genera una clave nueva bajo path, escribe value y devuelve la clave.
func (s *Service) Push(ctx context.Context, path string, value json.RawMessage) (string, error) {
	p, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	key := pushid.New()
	if err := s.Set(ctx, entity.JoinPath(p, key), value); err != nil {
		return "", err
	}
	return key, nil
}

// Subscribe entrega el snapshot actual de path y uno nuevo después de cada escritura que lo afecte.
// El canal se cierra al cancelar ctx.
func (s *Service) Subscribe(ctx context.Context, path string) (<-chan entity.Snapshot, error) {
	p, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx, p)
	if err != nil {
		return nil, err
	}
	ch, subID := s.hub.Subscribe(ctx, p)
	s.hub.PublishTo(p, subID, snap)
	return ch, nil
}

// Close cierra todas las suscripciones activas.
func (s *Service) Close() {
	s.hub.Close()
}

func (s *Service) apply(ctx context.Context, writes []entity.NodeWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Apply(ctx, writes); err != nil {
		return fmt.Errorf("escribir: %w", err)
	}
	for _, sub := range s.hub.Paths() {
		if !affected(sub, writes) {
			continue
		}
		snap, err := s.read(ctx, sub)
		if err != nil {
			s.log.Error().Err(err).Str("path", sub).Msg("releer ruta suscrita")
			continue
		}
		s.hub.Publish(sub, snap)
	}
	return nil
}

func affected(sub string, writes []entity.NodeWrite) bool {
	for _, w := range writes {
		if entity.Related(w.Path, sub) {
			return true
		}
	}
	return false
}

func cleanPath(path string) (string, error) {
	p, err := entity.CleanPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPath, err)
	}
	return p, nil
}
