package repository

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// NodeRepository define el puerto de persistencia del árbol de datos, almacenado como hojas
// (ruta absoluta -> escalar JSON).
type NodeRepository interface {
	// Leaves devuelve las hojas en path o bajo path. Con path "" devuelve todo el árbol.
	Leaves(ctx context.Context, path string) (map[string]json.RawMessage, error)
	// Apply aplica las escrituras en orden y de forma atómica. Cada escritura borra el subárbol
	// y las hojas ancestro de su ruta antes de insertar las nuevas hojas.
	Apply(ctx context.Context, writes []entity.NodeWrite) error
}
