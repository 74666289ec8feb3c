package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/infrastructure/memory"
)

func set(t *testing.T, repo *memory.NodeRepo, path, value string) {
	t.Helper()
	leaves, err := entity.Flatten(path, json.RawMessage(value))
	require.NoError(t, err)
	require.NoError(t, repo.Apply(context.Background(), []entity.NodeWrite{{Path: path, Leaves: leaves}}))
}

func get(t *testing.T, repo *memory.NodeRepo, path string) string {
	t.Helper()
	leaves, err := repo.Leaves(context.Background(), path)
	require.NoError(t, err)
	raw, err := entity.Assemble(path, leaves)
	require.NoError(t, err)
	if raw == nil {
		return "null"
	}
	return string(raw)
}

func TestNodeRepo_SetReemplazaSubarbol(t *testing.T) {
	repo := memory.NewNodeRepository()
	set(t, repo, "lojas/X", `{"A":true,"B":true}`)
	set(t, repo, "lojas/X", `{"C":true}`)

	assert.JSONEq(t, `{"C":true}`, get(t, repo, "lojas/X"))
	assert.JSONEq(t, `{"X":{"C":true}}`, get(t, repo, "lojas"))
}

func TestNodeRepo_HojaAncestroSeReemplaza(t *testing.T) {
	repo := memory.NewNodeRepository()
	set(t, repo, "a", `"hoja"`)
	set(t, repo, "a/b", `1`)

	assert.JSONEq(t, `{"b":1}`, get(t, repo, "a"))
}

func TestNodeRepo_NullBorra(t *testing.T) {
	repo := memory.NewNodeRepository()
	set(t, repo, "emprestimos/1", `{"item":"Maionese"}`)
	set(t, repo, "emprestimos/1", `null`)

	assert.Equal(t, "null", get(t, repo, "emprestimos"))
}

func TestNodeRepo_LeavesDevuelveCopia(t *testing.T) {
	repo := memory.NewNodeRepository()
	set(t, repo, "a/b", `"x"`)

	leaves, err := repo.Leaves(context.Background(), "a")
	require.NoError(t, err)
	leaves["a/b"][1] = 'y'

	assert.JSONEq(t, `{"b":"x"}`, get(t, repo, "a"))
}
