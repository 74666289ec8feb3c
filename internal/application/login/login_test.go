package login_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/emprestei/internal/application/login"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

type recordingIDP struct {
	email, password string
	err             error
}

func (r *recordingIDP) SignIn(_ context.Context, email, password string) (*entity.Identity, error) {
	r.email, r.password = email, password
	if r.err != nil {
		return nil, r.err
	}
	return &entity.Identity{UID: "u1", Email: email}, nil
}
func (r *recordingIDP) SignOut(context.Context) error                    { return nil }
func (r *recordingIDP) OnAuthStateChanged(func(*entity.Identity)) func() { return func() {} }

func TestSubmit_EnviaCredencialesLiterales(t *testing.T) {
	idp := &recordingIDP{}
	v := login.NewView(idp, zerolog.Nop())

	a := v.Submit(context.Background(), " ana@loja-a.com ", " senha ")
	assert.Nil(t, a)
	assert.Equal(t, " ana@loja-a.com ", idp.email)
	assert.Equal(t, " senha ", idp.password)
}

func TestSubmit_FallaAvisoGenericoYLog(t *testing.T) {
	var buf bytes.Buffer
	idp := &recordingIDP{err: errors.New("auth/wrong-password")}
	v := login.NewView(idp, zerolog.New(&buf))

	a := v.Submit(context.Background(), "ana@loja-a.com", "errada")
	if assert.NotNil(t, a) {
		assert.Equal(t, "Erro de Login", a.Title)
		assert.Equal(t, "Verifique seu e-mail e senha.", a.Message)
	}
	assert.Contains(t, buf.String(), "auth/wrong-password")
}

func TestSubmit_CamposVaciosIgualSeEnvian(t *testing.T) {
	idp := &recordingIDP{err: errors.New("auth/invalid-email")}
	v := login.NewView(idp, zerolog.Nop())

	a := v.Submit(context.Background(), "", "")
	assert.NotNil(t, a)
	assert.Equal(t, "", idp.email)
}
