package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Broadcaster pub/sub en memoria de snapshots, indexado por ruta suscrita.
// Cada suscriptor tiene un buffer de 1: si no consumió el snapshot anterior se reemplaza por el
// nuevo. Cada snapshot es el valor completo de la ruta, así que perder intermedios no pierde estado.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan entity.Snapshot // path -> subID -> ch
	log         zerolog.Logger
}

// NewBroadcaster crea el broadcaster.
func NewBroadcaster(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan entity.Snapshot),
		log:         log.With().Str("component", "broadcaster").Logger(),
	}
}

// Subscribe registra un suscriptor para path. La suscripción se limpia sola al cancelar ctx.
func (b *Broadcaster) Subscribe(ctx context.Context, path string) (<-chan entity.Snapshot, string) {
	subID := uuid.New().String()
	ch := make(chan entity.Snapshot, 1)

	b.mu.Lock()
	if _, ok := b.subscribers[path]; !ok {
		b.subscribers[path] = make(map[string]chan entity.Snapshot)
	}
	b.subscribers[path][subID] = ch
	b.mu.Unlock()

	b.log.Debug().Str("path", path).Str("sub_id", subID).Msg("suscriptor agregado")

	go func() {
		<-ctx.Done()
		b.Unsubscribe(path, subID)
	}()
	return ch, subID
}

// Paths rutas con al menos un suscriptor.
func (b *Broadcaster) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.subscribers))
	for p := range b.subscribers {
		out = append(out, p)
	}
	return out
}

// Publish entrega snap a todos los suscriptores de path sin bloquear.
// Los envíos se hacen bajo el read lock para que Unsubscribe no cierre un canal en uso.
func (b *Broadcaster) Publish(path string, snap entity.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[path] {
		offerLatest(ch, snap)
	}
}

// PublishTo entrega snap a un único suscriptor (snapshot inicial).
func (b *Broadcaster) PublishTo(path, subID string, snap entity.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if ch, ok := b.subscribers[path][subID]; ok {
		offerLatest(ch, snap)
	}
}

func offerLatest(ch chan entity.Snapshot, snap entity.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Unsubscribe elimina la suscripción y cierra su canal.
func (b *Broadcaster) Unsubscribe(path, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[path]
	if !ok {
		return
	}
	ch, ok := subs[subID]
	if !ok {
		return
	}
	delete(subs, subID)
	close(ch)
	if len(subs) == 0 {
		delete(b.subscribers, path)
	}
	b.log.Debug().Str("path", path).Str("sub_id", subID).Msg("suscriptor eliminado")
}

// Close cierra todas las suscripciones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, subs := range b.subscribers {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subscribers, path)
	}
}
