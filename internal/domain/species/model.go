package species

import "errors"

var ErrUnsupportedSpecies = errors.New("unsupported species")

// Descriptor identifica una especie seleccionable. El orden de la lista es el orden de display.
type Descriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fallback se usa cuando el catálogo remoto no responde. Ids y labels exactos.
var fallback = []Descriptor{
	{ID: "perro", Name: "Perro"},
	{ID: "gato", Name: "Gato"},
	{ID: "tortuga", Name: "Tortuga"},
	{ID: "erizo", Name: "Erizo Africano"},
	{ID: "huron", Name: "Hurón"},
	{ID: "iguana", Name: "Iguana"},
	{ID: "hamster", Name: "Hámster"},
	{ID: "patos_pollos", Name: "Patos y Pollos"},
	{ID: "aves", Name: "Aves (Psitácidos/Ornamentales)"},
	{ID: "conejo", Name: "Conejo"},
}

// Fallback devuelve una copia de la lista fija de diez especies.
func Fallback() []Descriptor {
	return append([]Descriptor(nil), fallback...)
}

// Contains reporta si id aparece exactamente una vez en list.
func Contains(list []Descriptor, id string) bool {
	n := 0
	for _, d := range list {
		if d.ID == id {
			n++
		}
	}
	return n == 1
}
