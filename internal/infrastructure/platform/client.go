// Package platform es el cliente de la API de Emprestei: proveedor de identidad con sesión
// persistida y base de datos en tiempo real sobre HTTP + SSE. Implementa los puertos de
// application/ports.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/domain"
)

// APIError respuesta de error de la API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// Unwrap traduce los status de autenticación a los errores de dominio.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// doJSON ejecuta la petición y decodifica la respuesta en out (si no es nil).
func doJSON(ctx context.Context, hc *http.Client, method, target, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("serializar petición: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("crear petición: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decodificar respuesta: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var e dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
		apiErr.Code, apiErr.Message = e.Code, e.Message
	}
	return apiErr
}

// escapePath escapa cada segmento de la ruta del árbol para la URL.
func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func isUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
