package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/emprestei/internal/application/auth"
	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/application/report"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/infrastructure/memory"
	"github.com/jhoicas/emprestei/internal/infrastructure/pdf"
	"github.com/jhoicas/emprestei/internal/infrastructure/platform"
	apphttp "github.com/jhoicas/emprestei/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/emprestei/pkg/jwt"
)

const testSecret = "platform-test-secret"

// startAPI levanta la API completa sobre memoria en un puerto libre.
func startAPI(t *testing.T) (string, *realtime.Service) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	authUC := auth.NewAuthUseCase(accounts, auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "test"})
	_, err := authUC.RegisterAccount(context.Background(), dto.RegisterAccountRequest{
		UID: "u1", Email: "ana@loja-a.com", Password: "senha-forte",
	})
	require.NoError(t, err)

	svc := realtime.NewService(memory.NewNodeRepository(), zerolog.Nop())
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Realtime:  svc,
		ReportUC:  report.NewLoanReportUseCase(svc, pdf.NewMarotoLoanReport(), zerolog.Nop()),
		JWTSecret: testSecret,
		Logger:    zerolog.Nop(),
		KeepAlive: time.Second,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		svc.Close()
		_ = app.ShutdownWithTimeout(time.Second)
	})
	return "http://" + ln.Addr().String(), svc
}

type identityLog struct {
	mu  sync.Mutex
	ids []*entity.Identity
}

func (l *identityLog) add(id *entity.Identity) {
	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
}

func (l *identityLog) last() *entity.Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ids[len(l.ids)-1]
}

func (l *identityLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

func TestAuthClient_SignInPersisteSesion(t *testing.T) {
	base, _ := startAPI(t)
	session := filepath.Join(t.TempDir(), "emprestei", "session")

	client := platform.NewAuthClient(base, session, nil, zerolog.Nop())
	events := &identityLog{}
	unsubscribe := client.OnAuthStateChanged(events.add)
	defer unsubscribe()
	require.Nil(t, events.last(), "sin sesión se notifica nil al registrarse")

	id, err := client.SignIn(context.Background(), "ana@loja-a.com", "senha-forte")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, "u1", events.last().UID)

	info, err := os.Stat(session)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// un cliente nuevo restaura la sesión
	restored := platform.NewAuthClient(base, session, nil, zerolog.Nop())
	require.NoError(t, restored.Restore())
	require.NotNil(t, restored.Current())
	assert.Equal(t, "u1", restored.Current().UID)
	assert.Equal(t, client.Token(), restored.Token())

	require.NoError(t, client.SignOut(context.Background()))
	assert.Nil(t, events.last())
	_, err = os.Stat(session)
	assert.True(t, os.IsNotExist(err))
}

func TestAuthClient_CredencialesInvalidas(t *testing.T) {
	base, _ := startAPI(t)
	client := platform.NewAuthClient(base, "", nil, zerolog.Nop())

	_, err := client.SignIn(context.Background(), "ana@loja-a.com", "errada")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Nil(t, client.Current())
}

func TestAuthClient_RestoreDescartaTokenExpirado(t *testing.T) {
	session := filepath.Join(t.TempDir(), "session")
	tok, err := pkgjwt.Generate(testSecret, "u1", "ana@loja-a.com", "test", -5)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(session, []byte(tok), 0o600))

	client := platform.NewAuthClient("http://127.0.0.1:1", session, nil, zerolog.Nop())
	require.NoError(t, client.Restore())
	assert.Nil(t, client.Current())
	_, err = os.Stat(session)
	assert.True(t, os.IsNotExist(err))
}

func signedIn(t *testing.T, base string) (*platform.AuthClient, *platform.DatabaseClient) {
	t.Helper()
	authClient := platform.NewAuthClient(base, "", nil, zerolog.Nop())
	_, err := authClient.SignIn(context.Background(), "ana@loja-a.com", "senha-forte")
	require.NoError(t, err)
	db := platform.NewDatabaseClient(base, authClient, nil, zerolog.Nop()).WithRetryDelay(50 * time.Millisecond)
	return authClient, db
}

func TestDatabaseClient_SetUpdateGetPush(t *testing.T) {
	base, _ := startAPI(t)
	_, db := signedIn(t, base)
	ctx := context.Background()

	loan := entity.NewLoan("", "Maionese", 3, "Loja Centro", "B", "Ana - Loja Centro", time.Now())
	key := db.NewKey("emprestimos")
	loan.ID = key
	require.NoError(t, db.Set(ctx, "emprestimos/"+key, loan))
	require.NoError(t, db.Update(ctx, "emprestimos/"+key, entity.FinalizeFields("Ana - Loja Centro", time.Now())))

	snap, err := db.Get(ctx, "emprestimos/"+key)
	require.NoError(t, err)
	var got entity.Loan
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, key, got.ID)
	assert.Equal(t, "Loja Centro", got.From)
	assert.True(t, got.IsFinalized())

	pushed, err := db.Push(ctx, "emprestimos", map[string]any{"item": "Sal"})
	require.NoError(t, err)
	assert.NotEmpty(t, pushed)

	missing, err := db.Get(ctx, "usuarios/nadie")
	require.NoError(t, err)
	assert.False(t, missing.Exists())
}

func TestDatabaseClient_SubscribeRecibeCambios(t *testing.T) {
	base, svc := startAPI(t)
	_, db := signedIn(t, base)

	snaps := make(chan entity.Snapshot, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	unsubscribe, err := db.Subscribe(ctx, "lojas", func(s entity.Snapshot) { snaps <- s })
	require.NoError(t, err)
	defer unsubscribe()

	first := <-snaps
	assert.False(t, first.Exists())

	require.NoError(t, svc.Set(context.Background(), "lojas/X/Loja Centro", json.RawMessage(`true`)))
	select {
	case s := <-snaps:
		assert.JSONEq(t, `{"X":{"Loja Centro":true}}`, string(s.Value))
	case <-time.After(3 * time.Second):
		t.Fatal("timeout esperando snapshot")
	}
}

func TestDatabaseClient_TokenRechazadoCierraSesion(t *testing.T) {
	base, _ := startAPI(t)
	session := filepath.Join(t.TempDir(), "session")

	// token firmado con otro secret: el servidor lo rechaza
	bad, err := pkgjwt.Generate("otro-secret", "u1", "ana@loja-a.com", "test", 60)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(session, []byte(bad), 0o600))

	authClient := platform.NewAuthClient(base, session, nil, zerolog.Nop())
	require.NoError(t, authClient.Restore())
	require.NotNil(t, authClient.Current())

	events := &identityLog{}
	defer authClient.OnAuthStateChanged(events.add)()

	db := platform.NewDatabaseClient(base, authClient, nil, zerolog.Nop())
	err = db.Set(context.Background(), "lojas/X/A", true)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	assert.Eventually(t, func() bool { return events.len() == 2 && events.last() == nil }, time.Second, 10*time.Millisecond)
	assert.Nil(t, authClient.Current())
}
