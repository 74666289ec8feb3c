package dto

import "encoding/json"

// PushResponse clave generada por un push (mismo formato que {"name": key}).
type PushResponse struct {
	Name string `json:"name"`
}

// SnapshotEvent cuerpo de cada evento "snapshot" del stream SSE.
type SnapshotEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}
