// Package provision carga los datos que la app no crea por sí misma: cuentas, perfiles en
// usuarios/{uid} y el directorio de lojas/{empresa}/{loja}.
package provision

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/emprestei/internal/domain/entity"
)

// Fixture contenido del archivo de provisión (YAML). ${VAR} se expande desde el entorno
// para no guardar contraseñas en el archivo.
//
//	empresas:
//	  X: [A, B, C]
//	usuarios:
//	  - uid: ana
//	    email: ana@x.com
//	    senha: ${ANA_SENHA}
//	    nome: Ana
//	    loja: A
//	    empresa: X
type Fixture struct {
	Companies map[string][]string `yaml:"empresas"`
	Users     []User              `yaml:"usuarios"`
}

// User cuenta más perfil.
type User struct {
	UID      string `yaml:"uid"`
	Email    string `yaml:"email"`
	Password string `yaml:"senha"`
	Name     string `yaml:"nome"`
	Store    string `yaml:"loja"`
	Company  string `yaml:"empresa"`
}

// Profile perfil que se escribe en usuarios/{uid}.
func (u User) Profile() entity.UserProfile {
	return entity.UserProfile{Name: u.Name, Store: u.Store, Company: u.Company}
}

// Load lee y valida un archivo de provisión. Archivos que no son UTF-8 se leen como
// ISO-8859-1 (exportaciones de planillas).
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodifica y valida el contenido de un archivo de provisión.
func Parse(data []byte) (*Fixture, error) {
	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decodificar ISO-8859-1: %w", err)
		}
		data = decoded
	}

	var f Fixture
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parsear provisión: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate exige claves válidas del árbol y usuarios completos.
func (f *Fixture) Validate() error {
	var problems []string
	for company, stores := range f.Companies {
		if entity.ValidateKey(company) != nil {
			problems = append(problems, fmt.Sprintf("empresa %q inválida", company))
		}
		for _, s := range stores {
			if entity.ValidateKey(s) != nil {
				problems = append(problems, fmt.Sprintf("loja %q de %q inválida", s, company))
			}
		}
	}
	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		switch {
		case entity.ValidateKey(u.UID) != nil:
			problems = append(problems, fmt.Sprintf("usuarios[%d]: uid %q inválido", i, u.UID))
		case seen[u.UID]:
			problems = append(problems, fmt.Sprintf("usuarios[%d]: uid %q repetido", i, u.UID))
		}
		seen[u.UID] = true
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			problems = append(problems, fmt.Sprintf("usuarios[%d]: email y senha son obligatorios", i))
		}
		if u.Store == "" || u.Company == "" {
			problems = append(problems, fmt.Sprintf("usuarios[%d]: loja y empresa son obligatorias", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("provisión inválida: %s", strings.Join(problems, "; "))
	}
	return nil
}
