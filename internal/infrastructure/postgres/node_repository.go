package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
)

var _ repository.NodeRepository = (*NodeRepo)(nil)

// NodeRepo guarda el árbol de datos en la tabla nodes (una fila por hoja).
type NodeRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewNodeRepository construye el adaptador de persistencia del árbol.
func NewNodeRepository(pool *pgxpool.Pool) *NodeRepo {
	return &NodeRepo{pool: pool, tx: NewTxRunner(pool)}
}

// Leaves devuelve las hojas en path o bajo path.
func (r *NodeRepo) Leaves(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if path == "" {
		rows, err = r.pool.Query(ctx, `SELECT path, value FROM nodes`)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT path, value FROM nodes WHERE path = $1 OR starts_with(path, $1 || '/')`, path)
	}
	if err != nil {
		return nil, fmt.Errorf("query nodes %q: %w", path, err)
	}
	defer rows.Close()

	leaves := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			p   string
			raw []byte
		)
		if err := rows.Scan(&p, &raw); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		leaves[p] = json.RawMessage(raw)
	}
	return leaves, rows.Err()
}

// Apply aplica las escrituras dentro de una transacción.
func (r *NodeRepo) Apply(ctx context.Context, writes []entity.NodeWrite) error {
	return r.tx.Run(ctx, func(q Querier) error {
		for _, w := range writes {
			if err := applyWrite(ctx, q, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyWrite(ctx context.Context, tx Querier, w entity.NodeWrite) error {
	if w.Path == "" {
		if _, err := tx.Exec(ctx, `DELETE FROM nodes`); err != nil {
			return fmt.Errorf("delete tree: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`DELETE FROM nodes WHERE path = $1 OR starts_with(path, $1 || '/')`, w.Path); err != nil {
			return fmt.Errorf("delete subtree %q: %w", w.Path, err)
		}
		// Una hoja en un ancestro quedaría tapando al nuevo subárbol.
		if anc := entity.Ancestors(w.Path); len(anc) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM nodes WHERE path = ANY($1)`, anc); err != nil {
				return fmt.Errorf("delete ancestors %q: %w", w.Path, err)
			}
		}
	}
	if len(w.Leaves) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for p, raw := range w.Leaves {
		batch.Queue(`
			INSERT INTO nodes (path, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			p, []byte(raw))
	}
	br := tx.SendBatch(ctx, batch)
	for range w.Leaves {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert leaves %q: %w", w.Path, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch %q: %w", w.Path, err)
	}
	return nil
}
