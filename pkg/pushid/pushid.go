// Package pushid genera las claves de los nodos creados con push.
//
// Las claves son UUIDv7 en texto: el prefijo es el instante en milisegundos y la librería
// garantiza monotonía dentro del proceso, así que el orden lexicográfico de las claves es
// el orden de inserción.
package pushid

import "github.com/google/uuid"

// New devuelve una clave nueva, mayor que todas las generadas antes en este proceso.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}
