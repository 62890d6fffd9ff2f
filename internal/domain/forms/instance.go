package forms

import "fmt"

// Instance es un formulario montado: schema inmutable + valores y errores locales.
// No es seguro para uso concurrente; el dueño (dispatcher) serializa el acceso.
type Instance struct {
	form   *Form
	index  map[string]FieldSpec
	values Values
	errors map[string]string
}

func NewInstance(form *Form) *Instance {
	index := make(map[string]FieldSpec)
	for _, fs := range form.Fields() {
		index[fs.Name] = fs
	}
	return &Instance{
		form:   form,
		index:  index,
		values: Values{},
		errors: map[string]string{},
	}
}

func (i *Instance) Form() *Form { return i.form }

func (i *Instance) Values() Values { return i.values.Clone() }

func (i *Instance) Errors() map[string]string {
	out := make(map[string]string, len(i.errors))
	for k, v := range i.errors {
		out[k] = v
	}
	return out
}

// Change normaliza value según el kind y lo guarda; el campo queda tocado
// y se limpia su error inline.
func (i *Instance) Change(name string, value any) error {
	fs, ok := i.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v, err := normalize(fs, value)
	if err != nil {
		return err
	}
	i.values[name] = v
	delete(i.errors, name)
	return nil
}

// Clear vuelve el campo a "no tocado".
func (i *Instance) Clear(name string) error {
	if _, ok := i.index[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	delete(i.values, name)
	return nil
}

// Submit valida los requeridos. Si falla, deja los errores inline, no borra
// ningún valor y no llama onSubmit. Si pasa, llama onSubmit una sola vez
// con una copia de los valores.
func (i *Instance) Submit(onSubmit func(Values)) error {
	if verr := Validate(i.form, i.values); verr != nil {
		i.errors = make(map[string]string, len(verr.Fields))
		for k, v := range verr.Fields {
			i.errors[k] = v
		}
		return verr
	}
	i.errors = map[string]string{}
	if onSubmit != nil {
		onSubmit(i.values.Clone())
	}
	return nil
}

// Cancel no pide confirmación aunque haya datos cargados.
func (i *Instance) Cancel(onCancel func()) {
	if onCancel != nil {
		onCancel()
	}
}
