package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/internal/application/session"
	"github.com/jhoicas/emprestei/internal/domain/entity"
)

type authStub struct {
	mu           sync.Mutex
	fn           func(*entity.Identity)
	unsubscribed bool
}

func (a *authStub) SignIn(context.Context, string, string) (*entity.Identity, error) { return nil, nil }
func (a *authStub) SignOut(context.Context) error                                    { return nil }
func (a *authStub) OnAuthStateChanged(fn func(*entity.Identity)) func() {
	a.mu.Lock()
	a.fn = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		a.unsubscribed = true
		a.mu.Unlock()
	}
}

func (a *authStub) emit(id *entity.Identity) {
	a.mu.Lock()
	fn := a.fn
	a.mu.Unlock()
	fn(id)
}

func (a *authStub) ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fn != nil
}

type dbStub struct {
	mu     sync.Mutex
	active map[string]int
}

func (d *dbStub) Subscribe(_ context.Context, path string, fn func(entity.Snapshot)) (func(), error) {
	d.mu.Lock()
	d.active[path]++
	d.mu.Unlock()
	go fn(entity.Snapshot{Path: path})
	return func() {
		d.mu.Lock()
		d.active[path]--
		d.mu.Unlock()
	}, nil
}
func (d *dbStub) Set(context.Context, string, any) error               { return nil }
func (d *dbStub) Update(context.Context, string, map[string]any) error { return nil }
func (d *dbStub) NewKey(string) string                                 { return "k" }

func (d *dbStub) subs(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active[path]
}

type viewLog struct {
	mu    sync.Mutex
	views []session.View
}

func (v *viewLog) add(view session.View) {
	v.mu.Lock()
	v.views = append(v.views, view)
	v.mu.Unlock()
}

func (v *viewLog) all() []session.View {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]session.View(nil), v.views...)
}

func startGate(t *testing.T) (*authStub, *dbStub, *viewLog, context.CancelFunc, chan error) {
	t.Helper()
	idp := &authStub{}
	db := &dbStub{active: map[string]int{}}
	views := &viewLog{}
	gate := session.NewGate(idp, db, zerolog.Nop(), views.add, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gate.Run(ctx) }()
	t.Cleanup(cancel)
	require.Eventually(t, idp.ready, time.Second, 5*time.Millisecond)
	return idp, db, views, cancel, done
}

func TestGate_SinSesionMuestraLogin(t *testing.T) {
	idp, _, views, _, _ := startGate(t)
	idp.emit(nil)

	got := views.all()
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Home)
	assert.Nil(t, got[0].Identity)
}

func TestGate_ConSesionConstruyeHome(t *testing.T) {
	idp, db, views, _, _ := startGate(t)
	idp.emit(&entity.Identity{UID: "u1"})

	got := views.all()
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Home)
	assert.Equal(t, "u1", got[0].Identity.UID)
	assert.Eventually(t, func() bool { return db.subs("usuarios/u1") == 1 }, time.Second, 5*time.Millisecond)

	// el mismo usuario no reconstruye la pantalla
	idp.emit(&entity.Identity{UID: "u1"})
	assert.Len(t, views.all(), 1)
}

func TestGate_CambioDeUsuarioReemplazaHome(t *testing.T) {
	idp, db, views, _, _ := startGate(t)
	idp.emit(&entity.Identity{UID: "u1"})
	require.Eventually(t, func() bool { return db.subs("usuarios/u1") == 1 }, time.Second, 5*time.Millisecond)

	idp.emit(&entity.Identity{UID: "u2"})
	assert.Equal(t, 0, db.subs("usuarios/u1"))
	assert.Eventually(t, func() bool { return db.subs("usuarios/u2") == 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, views.all(), 2)

	idp.emit(nil)
	assert.Equal(t, 0, db.subs("usuarios/u2"))
	assert.Equal(t, 0, db.subs("emprestimos"))
	last := views.all()[2]
	assert.Nil(t, last.Home)
}

func TestGate_StopLiberaSuscripcion(t *testing.T) {
	idp, db, _, cancel, done := startGate(t)
	idp.emit(&entity.Identity{UID: "u1"})
	require.Eventually(t, func() bool { return db.subs("lojas") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó")
	}
	idp.mu.Lock()
	assert.True(t, idp.unsubscribed)
	idp.mu.Unlock()
	assert.Equal(t, 0, db.subs("lojas"))
}
