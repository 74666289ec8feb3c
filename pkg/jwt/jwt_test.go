package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/emprestei/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testUID    = "uid-ana"
	testEmail  = "ana@loja-a.com"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUID, testEmail, "emprestei-test", 60)
	require.NoError(t, err)

	uid, email, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)
	assert.Equal(t, testEmail, email)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUID, testEmail, "emprestei-test", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testUID, testEmail, "x", 60)
	assert.Error(t, err)
}

func TestInspect_SinSecret(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUID, testEmail, "emprestei-test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, testUID, claims.UserID)
	assert.Equal(t, testEmail, claims.Email)
}

func TestInspect_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUID, testEmail, "emprestei-test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Inspect(tok)
	assert.Error(t, err, "un token expirado no restaura sesión")
}

func TestInspect_Basura(t *testing.T) {
	_, err := pkgjwt.Inspect("no.es.jwt")
	assert.Error(t, err)
}
