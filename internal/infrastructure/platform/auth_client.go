package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/pkg/jwt"
)

// AuthClient proveedor de identidad contra /api/auth. Guarda el token en sessionFile para
// restaurar la sesión al reiniciar.
type AuthClient struct {
	baseURL     string
	hc          *http.Client
	sessionFile string
	log         zerolog.Logger

	mu        sync.Mutex
	token     string
	identity  *entity.Identity
	listeners map[int]func(*entity.Identity)
	nextID    int
}

// NewAuthClient crea el cliente. sessionFile vacío desactiva la persistencia.
func NewAuthClient(baseURL, sessionFile string, hc *http.Client, log zerolog.Logger) *AuthClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &AuthClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		hc:          hc,
		sessionFile: sessionFile,
		log:         log.With().Str("component", "auth_client").Logger(),
		listeners:   make(map[int]func(*entity.Identity)),
	}
}

// Restore carga la sesión guardada. Un token ilegible o expirado se descarta sin error.
func (a *AuthClient) Restore() error {
	if a.sessionFile == "" {
		return nil
	}
	raw, err := os.ReadFile(a.sessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("leer sesión: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	claims, err := jwt.Inspect(token)
	if err != nil {
		a.log.Info().Err(err).Msg("sesión guardada descartada")
		return a.removeSession()
	}

	a.mu.Lock()
	a.token = token
	a.identity = &entity.Identity{UID: claims.UserID, Email: claims.Email}
	a.mu.Unlock()
	return nil
}

// SignIn autentica con email y password.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	var out dto.LoginResponse
	err := doJSON(ctx, a.hc, http.MethodPost, a.baseURL+"/api/auth/login", "",
		dto.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	id := &entity.Identity{UID: out.User.UID, Email: out.User.Email}
	if err := a.saveSession(out.Token); err != nil {
		a.log.Warn().Err(err).Msg("no se pudo guardar la sesión")
	}
	a.setState(out.Token, id)
	return id, nil
}

// SignOut cierra la sesión local y borra el archivo de sesión.
func (a *AuthClient) SignOut(context.Context) error {
	if err := a.removeSession(); err != nil {
		return err
	}
	a.setState("", nil)
	return nil
}

// OnAuthStateChanged registra fn y la llama de inmediato con la identidad actual.
func (a *AuthClient) OnAuthStateChanged(fn func(*entity.Identity)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	current := a.identity
	a.mu.Unlock()

	fn(current)
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Token token vigente (vacío sin sesión).
func (a *AuthClient) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Current identidad actual o nil.
func (a *AuthClient) Current() *entity.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// Invalidate descarta una sesión que el servidor rechazó (token expirado o revocado).
// Solo actúa si token sigue siendo el token vigente.
func (a *AuthClient) Invalidate(token string) {
	a.mu.Lock()
	stale := token == "" || token != a.token
	a.mu.Unlock()
	if stale {
		return
	}
	a.log.Info().Msg("sesión rechazada por el servidor")
	if err := a.removeSession(); err != nil {
		a.log.Warn().Err(err).Msg("borrar sesión")
	}
	a.setState("", nil)
}

func (a *AuthClient) setState(token string, id *entity.Identity) {
	a.mu.Lock()
	a.token = token
	a.identity = id
	fns := make([]func(*entity.Identity), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

func (a *AuthClient) saveSession(token string) error {
	if a.sessionFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionFile), 0o700); err != nil {
		return fmt.Errorf("crear directorio de sesión: %w", err)
	}
	return os.WriteFile(a.sessionFile, []byte(token+"\n"), 0o600)
}

func (a *AuthClient) removeSession() error {
	if a.sessionFile == "" {
		return nil
	}
	if err := os.Remove(a.sessionFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}
