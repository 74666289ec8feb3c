package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Caracteres no permitidos en un segmento de ruta del árbol.
const forbiddenKeyChars = ".#$[]"

// CleanPath normaliza una ruta ("/a//b/" -> "a/b") y valida cada segmento.
// La raíz se representa con la cadena vacía.
func CleanPath(p string) (string, error) {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, seg := range parts {
		if seg == "" {
			continue
		}
		if err := ValidateKey(seg); err != nil {
			return "", err
		}
		out = append(out, seg)
	}
	return strings.Join(out, "/"), nil
}

// ValidateKey valida un segmento individual.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("segmento vacío")
	}
	if strings.ContainsAny(key, forbiddenKeyChars+"/") {
		return fmt.Errorf("segmento %q contiene caracteres no permitidos", key)
	}
	return nil
}

// JoinPath une segmentos ya validados ignorando vacíos.
func JoinPath(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// LastKey último segmento de la ruta.
func LastKey(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// IsAncestorOrSelf true si a es b o un ancestro de b.
func IsAncestorOrSelf(a, b string) bool {
	if a == "" || a == b {
		return true
	}
	return strings.HasPrefix(b, a+"/")
}

// Related true si una escritura en w afecta a un suscriptor en s (ancestro, descendiente o igual).
func Related(w, s string) bool {
	return IsAncestorOrSelf(w, s) || IsAncestorOrSelf(s, w)
}

// CompareKeys orden de hijos: claves enteras primero (numérico), luego el resto lexicográfico.
// Las claves push son crecientes en el tiempo, así que este orden es el de inserción.
func CompareKeys(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// SortKeys ordena claves con CompareKeys.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return CompareKeys(keys[i], keys[j]) < 0 })
}

// Flatten convierte el valor JSON escrito en base a hojas ruta-absoluta -> escalar JSON.
// Objetos y arreglos se descomponen; null y objetos vacíos no producen hojas (equivalen a borrar).
func Flatten(base string, value json.RawMessage) (map[string]json.RawMessage, error) {
	leaves := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(value)) == 0 {
		return leaves, nil
	}
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decodificar valor: %w", err)
	}
	if err := flattenInto(leaves, base, v); err != nil {
		return nil, err
	}
	return leaves, nil
}

func flattenInto(leaves map[string]json.RawMessage, p string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, child := range t {
			if err := ValidateKey(k); err != nil {
				return err
			}
			if err := flattenInto(leaves, JoinPath(p, k), child); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range t {
			if err := flattenInto(leaves, JoinPath(p, strconv.Itoa(i)), child); err != nil {
				return err
			}
		}
		return nil
	default:
		if p == "" {
			return fmt.Errorf("la raíz no admite valores escalares")
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("codificar hoja %s: %w", p, err)
		}
		leaves[p] = raw
		return nil
	}
}

// Assemble reconstruye el valor en base a partir de las hojas bajo esa ruta.
// Devuelve nil si no hay datos (el equivalente a null).
func Assemble(base string, leaves map[string]json.RawMessage) (json.RawMessage, error) {
	if leaf, ok := leaves[base]; ok && base != "" {
		return leaf, nil
	}
	root := make(map[string]any)
	found := false
	for p, raw := range leaves {
		if !IsAncestorOrSelf(base, p) || p == base {
			continue
		}
		rel := strings.TrimPrefix(p, base)
		rel = strings.TrimPrefix(rel, "/")
		segs := strings.Split(rel, "/")
		node := root
		for _, seg := range segs[:len(segs)-1] {
			next, ok := node[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[seg] = next
			}
			node = next
		}
		node[segs[len(segs)-1]] = raw
		found = true
	}
	if !found {
		return nil, nil
	}
	out, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("codificar %s: %w", base, err)
	}
	return out, nil
}

// NodeWrite reemplazo atómico del subárbol en Path por las hojas dadas (vacío = borrar).
type NodeWrite struct {
	Path   string
	Leaves map[string]json.RawMessage
}

// Ancestors rutas ancestro de p, de la más cercana a la raíz excluyendo la raíz.
func Ancestors(p string) []string {
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], "/"))
	}
	return out
}
