package forms

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSchema = errors.New("invalid form schema")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidValue  = errors.New("invalid field value")
)

// Kind define el control con el que se captura un campo.
// @Enum text, single-choice, multi-choice, select, textarea, checkbox
type Kind string

const (
	KindText         Kind = "text"
	KindSingleChoice Kind = "single-choice"
	KindMultiChoice  Kind = "multi-choice"
	KindSelect       Kind = "select"
	KindTextarea     Kind = "textarea"
	KindCheckbox     Kind = "checkbox"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindSingleChoice, KindMultiChoice, KindSelect, KindTextarea, KindCheckbox:
		return true
	}
	return false
}

// HasOptions indica si el kind exige una lista de opciones.
func (k Kind) HasOptions() bool {
	return k == KindSingleChoice || k == KindMultiChoice || k == KindSelect
}

type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldSpec es la definición estática de un campo. Name es vocabulario de wire:
// se persiste tal cual en consultation_data.
type FieldSpec struct {
	Name        string   `yaml:"name" json:"name"`
	Label       string   `yaml:"label" json:"label"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Input       string   `yaml:"input,omitempty" json:"input,omitempty"` // subtipo html para text (date, number)
	Placeholder string   `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Required    bool     `yaml:"required,omitempty" json:"required"`
	Options     []Option `yaml:"options,omitempty" json:"options,omitempty"`
}

func (f FieldSpec) HasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Group es una sección clínica (ej. "SISTEMA RESPIRATORIO").
type Group struct {
	Title  string      `yaml:"title" json:"title"`
	Fields []FieldSpec `yaml:"fields" json:"fields"`
}

// Form es el catálogo completo de una especie.
type Form struct {
	Species string  `yaml:"species" json:"species"`
	Title   string  `yaml:"title" json:"title"`
	Accent  string  `yaml:"accent" json:"accent"`
	Groups  []Group `yaml:"groups" json:"groups"`
}

// Fields devuelve los campos en orden de render.
func (f *Form) Fields() []FieldSpec {
	var out []FieldSpec
	for _, g := range f.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

func (f *Form) Field(name string) (FieldSpec, bool) {
	for _, g := range f.Groups {
		for _, fs := range g.Fields {
			if fs.Name == name {
				return fs, true
			}
		}
	}
	return FieldSpec{}, false
}

// RequiredFields devuelve los nombres de los campos obligatorios en orden de render.
func (f *Form) RequiredFields() []string {
	var out []string
	for _, fs := range f.Fields() {
		if fs.Required {
			out = append(out, fs.Name)
		}
	}
	return out
}

// Check valida la forma del catálogo: nombres únicos, kinds conocidos
// y opciones presentes donde el kind las exige.
func (f *Form) Check() error {
	if strings.TrimSpace(f.Species) == "" {
		return fmt.Errorf("%w: species is empty", ErrInvalidSchema)
	}
	if len(f.Groups) == 0 {
		return fmt.Errorf("%w: %s has no groups", ErrInvalidSchema, f.Species)
	}

	seen := make(map[string]struct{})
	for gi, g := range f.Groups {
		if len(g.Fields) == 0 {
			return fmt.Errorf("%w: %s group %d (%q) has no fields", ErrInvalidSchema, f.Species, gi, g.Title)
		}
		for _, fs := range g.Fields {
			name := strings.TrimSpace(fs.Name)
			if name == "" || name != fs.Name {
				return fmt.Errorf("%w: %s has a field with invalid name %q", ErrInvalidSchema, f.Species, fs.Name)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: %s field %q is duplicated", ErrInvalidSchema, f.Species, name)
			}
			seen[name] = struct{}{}

			if !fs.Kind.Valid() {
				return fmt.Errorf("%w: %s field %q has unknown kind %q", ErrInvalidSchema, f.Species, name, fs.Kind)
			}
			if fs.Kind.HasOptions() && len(fs.Options) == 0 {
				return fmt.Errorf("%w: %s field %q needs options", ErrInvalidSchema, f.Species, name)
			}
			if !fs.Kind.HasOptions() && len(fs.Options) > 0 {
				return fmt.Errorf("%w: %s field %q must not declare options", ErrInvalidSchema, f.Species, name)
			}
			values := make(map[string]struct{}, len(fs.Options))
			for _, o := range fs.Options {
				if _, dup := values[o.Value]; dup {
					return fmt.Errorf("%w: %s field %q repeats option %q", ErrInvalidSchema, f.Species, name, o.Value)
				}
				values[o.Value] = struct{}{}
			}
		}
	}
	return nil
}
