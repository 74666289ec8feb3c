package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot valor del árbol en una ruta en un instante dado.
// Value nil o "null" significa que no hay datos en la ruta.
type Snapshot struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"data"`
}

// Exists true si hay datos en la ruta.
func (s Snapshot) Exists() bool {
	v := bytes.TrimSpace(s.Value)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// Key último segmento de la ruta del snapshot.
func (s Snapshot) Key() string {
	return LastKey(s.Path)
}

// Decode deserializa el valor en v. Sin datos no modifica v.
func (s Snapshot) Decode(v any) error {
	if !s.Exists() {
		return nil
	}
	if err := json.Unmarshal(s.Value, v); err != nil {
		return fmt.Errorf("snapshot %s: %w", s.Path, err)
	}
	return nil
}

// Children hijos directos en orden de clave (CompareKeys). Si el valor no es un objeto devuelve nil.
func (s Snapshot) Children() ([]Snapshot, error) {
	if !s.Exists() {
		return nil, nil
	}
	v := bytes.TrimSpace(s.Value)
	if v[0] != '{' {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(v, &m); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.Path, err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortKeys(keys)
	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		out = append(out, Snapshot{Path: JoinPath(s.Path, k), Value: m[k]})
	}
	return out, nil
}

// Equal compara dos snapshots por ruta y contenido JSON canónico.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Path != o.Path {
		return false
	}
	if !s.Exists() || !o.Exists() {
		return s.Exists() == o.Exists()
	}
	return bytes.Equal(canonical(s.Value), canonical(o.Value))
}

func canonical(raw json.RawMessage) []byte {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	out, err := json.Marshal(v)
	if err != nil {
		return raw
	}
	return out
}
