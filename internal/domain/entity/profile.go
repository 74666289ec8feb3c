package entity

// UserProfile perfil de usuario en usuarios/{uid}. Se crea fuera de la app (seed) y aquí es solo lectura.
type UserProfile struct {
	Name    string `json:"nome"`
	Store   string `json:"loja"`    // tienda propia: origen por defecto y alcance de visibilidad
	Company string `json:"empresa"` // tenant: define qué tiendas aparecen en el selector
}

// Attribution texto "{nome} - {loja}" usado en criadoPor/editadoPor/finalizadoPor.
// Con perfil nil devuelve AnonymousAuthor.
func (p *UserProfile) Attribution() string {
	if p == nil {
		return AnonymousAuthor
	}
	return p.Name + " - " + p.Store
}

// HomeStore tienda del perfil o vacío si no hay perfil.
func (p *UserProfile) HomeStore() string {
	if p == nil {
		return ""
	}
	return p.Store
}
