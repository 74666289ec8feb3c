// Package memory implementa los puertos de persistencia en memoria. Sirve para desarrollo
// (DB_DRIVER=memory) y para los tests de aplicación.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
)

var _ repository.NodeRepository = (*NodeRepo)(nil)

// NodeRepo árbol de hojas protegido por un RWMutex.
type NodeRepo struct {
	mu     sync.RWMutex
	leaves map[string]json.RawMessage
}

// NewNodeRepository crea un árbol vacío.
func NewNodeRepository() *NodeRepo {
	return &NodeRepo{leaves: make(map[string]json.RawMessage)}
}

// Leaves devuelve una copia de las hojas en path o bajo path.
func (r *NodeRepo) Leaves(_ context.Context, path string) (map[string]json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]json.RawMessage)
	for p, raw := range r.leaves {
		if entity.IsAncestorOrSelf(path, p) {
			out[p] = append(json.RawMessage(nil), raw...)
		}
	}
	return out, nil
}

// Apply aplica las escrituras bajo el lock de escritura; todas o ninguna son visibles.
func (r *NodeRepo) Apply(_ context.Context, writes []entity.NodeWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range writes {
		for p := range r.leaves {
			if entity.IsAncestorOrSelf(w.Path, p) {
				delete(r.leaves, p)
			}
		}
		if w.Path != "" {
			for _, a := range entity.Ancestors(w.Path) {
				delete(r.leaves, a)
			}
		}
		for p, raw := range w.Leaves {
			r.leaves[p] = append(json.RawMessage(nil), raw...)
		}
	}
	return nil
}
