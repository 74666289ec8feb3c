package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/emprestei/internal/application/dto"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/domain"
)

// DefaultKeepAlive intervalo de comentarios keep-alive del stream SSE.
const DefaultKeepAlive = 15 * time.Second

// DBHandler expone el árbol de datos por ruta: lectura, escritura, update, push y stream SSE.
type DBHandler struct {
	svc       *realtime.Service
	log       zerolog.Logger
	keepAlive time.Duration
}

// NewDBHandler construye el handler. keepAlive <= 0 usa DefaultKeepAlive.
func NewDBHandler(svc *realtime.Service, log zerolog.Logger, keepAlive time.Duration) *DBHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &DBHandler{svc: svc, log: log.With().Str("component", "db_handler").Logger(), keepAlive: keepAlive}
}

// Get godoc
// @Summary      Leer o suscribirse a una ruta
// @Description  Con Accept: text/event-stream abre un stream con un evento "snapshot" inicial y uno por cada cambio.
// @Tags         db
// @Produce      json
// @Security     BearerAuth
// @Param        path  path  string  true  "ruta en el árbol (ej: emprestimos)"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/db/{path} [get]
func (h *DBHandler) Get(c *fiber.Ctx) error {
	path, err := treePath(c)
	if err != nil {
		return h.fail(c, err)
	}
	if strings.Contains(c.Get(fiber.HeaderAccept), "text/event-stream") {
		return h.stream(c, path)
	}
	snap, err := h.svc.Get(c.UserContext(), path)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if !snap.Exists() {
		return c.SendString("null")
	}
	return c.Send(snap.Value)
}

func (h *DBHandler) stream(c *fiber.Ctx, path string) error {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := h.svc.Subscribe(ctx, path)
	if err != nil {
		cancel()
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	uid := GetUserID(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		h.log.Debug().Str("path", path).Str("uid", uid).Msg("stream abierto")

		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return
				}
				data := snap.Value
				if !snap.Exists() {
					data = json.RawMessage("null")
				}
				payload, err := json.Marshal(dto.SnapshotEvent{Path: snap.Path, Data: data})
				if err != nil {
					h.log.Error().Err(err).Str("path", path).Msg("serializar snapshot")
					return
				}
				fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
			case <-ticker.C:
				fmt.Fprint(w, ": keepalive\n\n")
			}
			if err := w.Flush(); err != nil {
				h.log.Debug().Str("path", path).Str("uid", uid).Msg("stream cerrado por el cliente")
				return
			}
		}
	})
	return nil
}

// Set godoc
// @Summary      Escribir una ruta
// @Description  Reemplaza el valor en la ruta. null la borra.
// @Tags         db
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        path  path  string  true  "ruta en el árbol"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/db/{path} [put]
func (h *DBHandler) Set(c *fiber.Ctx) error {
	path, err := treePath(c)
	if err != nil {
		return h.fail(c, err)
	}
	body := c.Body()
	if !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	if err := h.svc.Set(c.UserContext(), path, body); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// Update godoc
// @Summary      Actualizar hijos de una ruta
// @Description  Escribe solo las claves del cuerpo; el resto de los hijos se conserva.
// @Tags         db
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        path  path  string  true  "ruta en el árbol"
// @Success      200   {object}  object
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/db/{path} [patch]
func (h *DBHandler) Update(c *fiber.Ctx) error {
	path, err := treePath(c)
	if err != nil {
		return h.fail(c, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil || fields == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se espera un objeto JSON"})
	}
	if err := h.svc.Update(c.UserContext(), path, fields); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(c.Body())
}

// Push godoc
// @Summary      Agregar un hijo con clave generada
// @Tags         db
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        path  path  string  true  "ruta en el árbol"
// @Success      200   {object}  dto.PushResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/db/{path} [post]
func (h *DBHandler) Push(c *fiber.Ctx) error {
	path, err := treePath(c)
	if err != nil {
		return h.fail(c, err)
	}
	body := c.Body()
	if !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	key, err := h.svc.Push(c.UserContext(), path, body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.PushResponse{Name: key})
}

func (h *DBHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPath):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PATH", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	}
	h.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("operación sobre el árbol")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// treePath ruta del árbol a partir del comodín de la URL (segmentos escapados).
// Se copia porque fasthttp reutiliza el buffer de la petición y el stream vive más que el handler.
func treePath(c *fiber.Ctx) (string, error) {
	p, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPath, err)
	}
	return strings.Clone(p), nil
}
