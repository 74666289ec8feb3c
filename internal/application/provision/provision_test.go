package provision_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/internal/application/auth"
	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/application/provision"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/infrastructure/memory"
)

const fixtureYAML = `
empresas:
  X: [A, B, "São Paulo"]
usuarios:
  - uid: ana
    email: ana@x.com
    senha: ${PROVISION_TEST_SENHA}
    nome: Ana
    loja: A
    empresa: X
`

func TestParse_ExpandeEntorno(t *testing.T) {
	t.Setenv("PROVISION_TEST_SENHA", "segredo")
	f, err := provision.Parse([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Users, 1)
	assert.Equal(t, "segredo", f.Users[0].Password)
	assert.Equal(t, []string{"A", "B", "São Paulo"}, f.Companies["X"])
}

func TestParse_Latin1(t *testing.T) {
	// "São" en ISO-8859-1
	data := []byte("empresas:\n  X: [\"S\xe3o\"]\n")
	f, err := provision.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"São"}, f.Companies["X"])
}

func TestParse_Invalido(t *testing.T) {
	_, err := provision.Parse([]byte(`
empresas:
  "X/Y": [A]
usuarios:
  - uid: ana
    email: ""
    senha: x
    loja: A
    empresa: X
  - uid: ana
    email: b@x.com
    senha: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `empresa "X/Y" inválida`)
	assert.Contains(t, err.Error(), "email y senha son obligatorios")
	assert.Contains(t, err.Error(), `uid "ana" repetido`)
	assert.Contains(t, err.Error(), "loja y empresa son obligatorias")
}

func TestProvisioner_ApplyIdempotente(t *testing.T) {
	t.Setenv("PROVISION_TEST_SENHA", "segredo")
	f, err := provision.Parse([]byte(fixtureYAML))
	require.NoError(t, err)

	ctx := context.Background()
	accounts := memory.NewAccountRepository()
	authUC := auth.NewAuthUseCase(accounts, auth.JWTConfig{Secret: "test", ExpMinutes: 5, Issuer: "test"})
	svc := realtime.NewService(memory.NewNodeRepository(), zerolog.Nop())
	defer svc.Close()
	p := provision.NewProvisioner(authUC, svc, zerolog.Nop())

	sum, err := p.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, provision.Summary{Stores: 3, AccountsCreated: 1, Profiles: 1}, sum)

	sum, err = p.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AccountsExisted)

	snap, err := svc.Get(ctx, "usuarios/ana")
	require.NoError(t, err)
	var profile map[string]string
	require.NoError(t, json.Unmarshal(snap.Value, &profile))
	assert.Equal(t, map[string]string{"nome": "Ana", "loja": "A", "empresa": "X"}, profile)

	stores, err := svc.Get(ctx, "lojas/X")
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":true,"B":true,"São Paulo":true}`, string(stores.Value))

	res, err := authUC.Login(ctx, dto.LoginRequest{Email: "ana@x.com", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, "ana", res.User.UID)
}
