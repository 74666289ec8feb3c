package entity

import "encoding/json"

// StoreDirectory directorio lojas/{empresa}/{loja}. Cada empresa se decodifica por separado:
// una entrada con otra forma no afecta a las demás. El valor de cada tienda no se usa.
type StoreDirectory map[string]json.RawMessage

// StoresOf nombres de tienda registrados para la empresa (sin orden definido).
// Nil si la empresa no tiene entrada o su entrada no es un objeto.
func (d StoreDirectory) StoresOf(company string) []string {
	if d == nil || company == "" {
		return nil
	}
	raw, ok := d[company]
	if !ok {
		return nil
	}
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil || entry == nil {
		return nil
	}
	stores := make([]string, 0, len(entry))
	for name := range entry {
		stores = append(stores, name)
	}
	return stores
}
