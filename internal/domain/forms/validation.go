package forms

import (
	"sort"
	"strings"
)

const RequiredMessage = "Este campo es requerido"

// ValidationError agrupa los errores inline por campo.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Validate recorre el schema y marca cada campo requerido vacío.
// Devuelve nil si no hay errores.
func Validate(form *Form, values Values) *ValidationError {
	var fields map[string]string
	for _, fs := range form.Fields() {
		if !fs.Required {
			continue
		}
		if isEmpty(values[fs.Name]) {
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[fs.Name] = RequiredMessage
		}
	}
	if fields == nil {
		return nil
	}
	return &ValidationError{Fields: fields}
}
