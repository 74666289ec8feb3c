package platform

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/pkg/pushid"
)

// TokenSource origen del token de las peticiones.
type TokenSource interface {
	Token() string
	// Invalidate avisa que el servidor rechazó token.
	Invalidate(token string)
}

// DefaultRetryDelay espera antes de reabrir un stream caído.
const DefaultRetryDelay = 2 * time.Second

// DatabaseClient base de datos en árbol contra /api/db.
type DatabaseClient struct {
	baseURL    string
	hc         *http.Client
	stream     *http.Client
	tokens     TokenSource
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewDatabaseClient crea el cliente. hc se usa para lecturas y escrituras; los streams usan
// un cliente sin timeout.
func NewDatabaseClient(baseURL string, tokens TokenSource, hc *http.Client, log zerolog.Logger) *DatabaseClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &DatabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		hc:         hc,
		stream:     &http.Client{Transport: hc.Transport},
		tokens:     tokens,
		log:        log.With().Str("component", "db_client").Logger(),
		retryDelay: DefaultRetryDelay,
	}
}

// WithRetryDelay cambia la espera entre reconexiones.
func (d *DatabaseClient) WithRetryDelay(delay time.Duration) *DatabaseClient {
	d.retryDelay = delay
	return d
}

func (d *DatabaseClient) url(path string) string {
	return d.baseURL + "/api/db/" + escapePath(path)
}

// Get lee el valor actual de path.
func (d *DatabaseClient) Get(ctx context.Context, path string) (entity.Snapshot, error) {
	var raw json.RawMessage
	if err := d.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return entity.Snapshot{}, err
	}
	return entity.Snapshot{Path: strings.Trim(path, "/"), Value: raw}, nil
}

// Set reemplaza el valor en path.
func (d *DatabaseClient) Set(ctx context.Context, path string, value any) error {
	return d.do(ctx, http.MethodPut, path, value, nil)
}

// Update escribe solo los hijos indicados.
func (d *DatabaseClient) Update(ctx context.Context, path string, fields map[string]any) error {
	return d.do(ctx, http.MethodPatch, path, fields, nil)
}

// Push escribe value bajo una clave generada por el servidor y la devuelve.
func (d *DatabaseClient) Push(ctx context.Context, path string, value any) (string, error) {
	var out dto.PushResponse
	if err := d.do(ctx, http.MethodPost, path, value, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

// NewKey genera una clave local creciente para un hijo nuevo.
func (d *DatabaseClient) NewKey(string) string {
	return pushid.New()
}

func (d *DatabaseClient) do(ctx context.Context, method, path string, in, out any) error {
	token := d.tokens.Token()
	err := doJSON(ctx, d.hc, method, d.url(path), token, in, out)
	if isUnauthorized(err) {
		d.tokens.Invalidate(token)
	}
	return err
}

// Subscribe abre un stream SSE sobre path y llama fn con cada snapshot. Si el stream se cae
// se reabre tras retryDelay; si el servidor rechaza el token se invalida la sesión y se deja
// de intentar. La función devuelta cierra el stream sin esperar.
func (d *DatabaseClient) Subscribe(ctx context.Context, path string, fn func(entity.Snapshot)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	go d.listen(subCtx, path, fn)
	return cancel, nil
}

func (d *DatabaseClient) listen(ctx context.Context, path string, fn func(entity.Snapshot)) {
	log := d.log.With().Str("path", path).Logger()
	for {
		token := d.tokens.Token()
		err := d.streamOnce(ctx, path, token, fn)
		if ctx.Err() != nil {
			return
		}
		if isUnauthorized(err) {
			log.Warn().Err(err).Msg("stream rechazado")
			d.tokens.Invalidate(token)
			return
		}
		log.Warn().Err(err).Dur("retry_in", d.retryDelay).Msg("stream interrumpido")
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.retryDelay):
		}
	}
}

func (d *DatabaseClient) streamOnce(ctx context.Context, path, token string, fn func(entity.Snapshot)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url(path), nil)
	if err != nil {
		return fmt.Errorf("crear petición: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := d.stream.Do(req)
	if err != nil {
		return fmt.Errorf("abrir stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	return readSSE(resp.Body, func(event, data string) error {
		if event != "snapshot" {
			return nil
		}
		var ev dto.SnapshotEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("snapshot ilegible: %w", err)
		}
		fn(entity.Snapshot{Path: ev.Path, Value: ev.Data})
		return nil
	})
}

// readSSE recorre el stream y llama handle por cada evento completo. Ignora comentarios.
func readSSE(body io.Reader, handle func(event, data string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var eventType string
	var dataLines []string
	for scanner.Scan() {
		line := scanner.Text()

		// Línea vacía cierra el evento
		if line == "" {
			if eventType != "" && len(dataLines) > 0 {
				if err := handle(eventType, strings.Join(dataLines, "\n")); err != nil {
					return err
				}
			}
			eventType = ""
			dataLines = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("leer stream: %w", err)
	}
	return io.ErrUnexpectedEOF
}
