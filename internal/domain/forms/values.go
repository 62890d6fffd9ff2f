package forms

import (
	"fmt"
	"strings"
)

// Values es el registro vivo de una instancia: nombre de campo -> valor.
// string para text/textarea/single-choice/select, []string para multi-choice
// y bool para checkbox. Solo contiene campos tocados.
type Values map[string]any

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		if ss, ok := val.([]string); ok {
			val = append([]string(nil), ss...)
		}
		out[k] = val
	}
	return out
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Strings(name string) []string {
	ss, _ := v[name].([]string)
	return ss
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Has reporta si el campo fue tocado (aunque su valor sea vacío).
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// isEmpty decide si un valor cuenta como vacío para la regla "required".
func isEmpty(val any) bool {
	switch x := val.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case bool:
		return !x
	}
	return false
}

// normalize convierte raw al tipo que corresponde al kind del campo.
// Acepta lo que llega de JSON ([]any, bool, string) y de formularios html
// ([]string, "on").
func normalize(fs FieldSpec, raw any) (any, error) {
	switch fs.Kind {
	case KindText, KindTextarea:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects text", ErrInvalidValue, fs.Name)
		}
		return s, nil

	case KindSingleChoice, KindSelect:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects one option", ErrInvalidValue, fs.Name)
		}
		if !fs.HasOption(s) {
			return nil, fmt.Errorf("%w: %s has no option %q", ErrInvalidValue, fs.Name, s)
		}
		return s, nil

	case KindMultiChoice:
		items, err := toStrings(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, fs.Name, err)
		}
		picked := make(map[string]bool, len(items))
		for _, it := range items {
			if !fs.HasOption(it) {
				return nil, fmt.Errorf("%w: %s has no option %q", ErrInvalidValue, fs.Name, it)
			}
			picked[it] = true
		}
		// orden de declaración, sin repetidos
		out := make([]string, 0, len(picked))
		for _, o := range fs.Options {
			if picked[o.Value] {
				out = append(out, o.Value)
			}
		}
		return out, nil

	case KindCheckbox:
		switch x := raw.(type) {
		case bool:
			return x, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true", "on", "1":
				return true, nil
			case "false", "off", "0":
				return false, nil
			}
		}
		return nil, fmt.Errorf("%w: %s expects true/false", ErrInvalidValue, fs.Name)
	}

	return nil, fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidValue, fs.Name, fs.Kind)
}

func toStrings(raw any) ([]string, error) {
	switch x := raw.(type) {
	case string:
		return []string{x}, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return nil, fmt.Errorf("option must be text, got %T", it)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expects a list of options, got %T", raw)
}
