package web

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer carga los templates embebidos en un TemplateSet propio de pongo2.
type Renderer struct {
	set *pongo2.TemplateSet
}

func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("intake", pongo2.NewFSLoader(sub))

	r := &Renderer{set: set}
	// falla al arrancar, no en el primer request
	if _, err := set.FromCache("index.html"); err != nil {
		return nil, fmt.Errorf("web: compile index.html: %w", err)
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data pongo2.Context) error {
	tpl, err := r.set.FromCache(name)
	if err != nil {
		return fmt.Errorf("web: load %s: %w", name, err)
	}
	if err := tpl.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("web: execute %s: %w", name, err)
	}
	return nil
}
