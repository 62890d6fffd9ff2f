package species

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"vet-consult-intake/internal/domain/forms"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Registry mapea id de especie -> catálogo de campos + metadata (título, acento).
type Registry struct {
	forms map[string]*forms.Form
	order []string
}

// NewRegistry carga los catálogos embebidos en el binario.
func NewRegistry() (*Registry, error) {
	sub, err := fs.Sub(catalogFS, "catalogs")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS parsea todos los .yaml/.yml de fsys. Cada archivo es un forms.Form.
func LoadFS(fsys fs.FS) (*Registry, error) {
	r := &Registry{forms: make(map[string]*forms.Form)}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("species: read %s: %w", p, err)
		}

		var f forms.Form
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("species: parse %s: %w", p, err)
		}
		if err := f.Check(); err != nil {
			return fmt.Errorf("species: %s: %w", p, err)
		}
		if _, dup := r.forms[f.Species]; dup {
			return fmt.Errorf("species: duplicate catalog %q (file %s)", f.Species, p)
		}
		r.forms[f.Species] = &f
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.order = sortedIDs(r.forms)
	return r, nil
}

// sortedIDs respeta el orden de la lista fallback; lo demás va al final, alfabético.
func sortedIDs(m map[string]*forms.Form) []string {
	rank := make(map[string]int, len(fallback))
	for i, d := range fallback {
		rank[d.ID] = i
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ri, iok := rank[ids[i]]
		rj, jok := rank[ids[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Form devuelve el catálogo de la especie o ErrUnsupportedSpecies.
// El *forms.Form devuelto es compartido; tratarlo como solo lectura.
func (r *Registry) Form(id string) (*forms.Form, error) {
	if r == nil {
		return nil, ErrUnsupportedSpecies
	}
	f, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSpecies, id)
	}
	return f, nil
}

func (r *Registry) Supports(id string) bool {
	if r == nil {
		return false
	}
	_, ok := r.forms[id]
	return ok
}

// IDs devuelve las especies con catálogo, en orden de display.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}
