package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/platform/logger"
)

const (
	exitOption   = "Salir"
	noAnswer     = "(sin respuesta)"
	actionSubmit = "Guardar consulta"
	actionEdit   = "Corregir campos"
	actionCancel = "Cancelar"
)

// Intake maneja una sesión de carga en terminal sobre un dispatcher.
type Intake struct {
	d      *consults.Dispatcher
	driver PromptDriver
	log    logger.Logger
}

func NewIntake(d *consults.Dispatcher, driver PromptDriver, log logger.Logger) *Intake {
	if log == nil {
		log = logger.Nop()
	}
	return &Intake{d: d, driver: driver, log: log}
}

// Run repite selector -> formulario -> envío hasta que el usuario elige Salir.
// El catálogo se carga acá si nadie lo cargó antes.
func (in *Intake) Run(ctx context.Context) error {
	in.d.LoadSpeciesCatalog(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := in.d.Snapshot()
		if !snap.Picking() {
			// un formulario quedó abierto (p.ej. tras un error): se descarta
			if err := in.d.Cancel(); err != nil {
				return err
			}
			continue
		}

		id, ok, err := in.pickSpecies(ctx, snap)
		if err != nil || !ok {
			return err
		}
		if err := in.d.SelectSpecies(id); err != nil {
			return err
		}
		if err := in.consult(ctx); err != nil {
			if errors.Is(err, ErrAborted) {
				_ = in.d.Cancel()
			}
			return err
		}
	}
}

func (in *Intake) pickSpecies(ctx context.Context, snap consults.Snapshot) (string, bool, error) {
	opts := make([]string, 0, len(snap.Catalog)+1)
	for _, sd := range snap.Catalog {
		opts = append(opts, sd.Name)
	}
	opts = append(opts, exitOption)

	idx, err := in.driver.Select(ctx, SelectConfig{
		Message:  "Seleccione la especie",
		Options:  opts,
		PageSize: len(opts),
	})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(snap.Catalog) {
		return "", false, nil
	}
	return snap.Catalog[idx].ID, true, nil
}

// consult llena y envía el formulario activo hasta guardarlo o cancelarlo.
func (in *Intake) consult(ctx context.Context) error {
	snap := in.d.Snapshot()
	if snap.Unsupported {
		if err := in.driver.Info(ctx, fmt.Sprintf("Especie no soportada: %q", snap.SpeciesID)); err != nil {
			return err
		}
		return in.d.Cancel()
	}

	if err := in.driver.Info(ctx, snap.Form.Title); err != nil {
		return err
	}
	if err := in.fill(ctx, snap.Form.Fields()); err != nil {
		return err
	}

	for {
		idx, err := in.driver.Select(ctx, SelectConfig{
			Message: "¿Qué desea hacer?",
			Options: []string{actionSubmit, actionEdit, actionCancel},
		})
		if err != nil {
			return err
		}

		switch idx {
		case 0:
			done, err := in.submit(ctx)
			if err != nil || done {
				return err
			}
		case 1:
			if err := in.fill(ctx, in.d.Snapshot().Form.Fields()); err != nil {
				return err
			}
		default:
			return in.d.Cancel()
		}
	}
}

// submit devuelve done=true cuando la consulta quedó guardada.
func (in *Intake) submit(ctx context.Context) (bool, error) {
	res, err := in.d.Submit(ctx)

	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		snap := in.d.Snapshot()
		var pending []forms.FieldSpec
		for _, fs := range snap.Form.Fields() {
			if msg, ok := verr.Fields[fs.Name]; ok {
				if err := in.driver.Info(ctx, fmt.Sprintf("%s: %s", fs.Label, msg)); err != nil {
					return false, err
				}
				pending = append(pending, fs)
			}
		}
		return false, in.fill(ctx, pending)
	case err != nil:
		return false, err
	}

	if !res.OK {
		return false, in.driver.Info(ctx, res.Message)
	}

	if err := in.driver.Info(ctx, consults.SuccessNotice); err != nil {
		return false, err
	}
	// en terminal el aviso ya quedó impreso: se vuelve al selector sin esperar el reset
	return true, in.d.Cancel()
}

// fill pregunta cada campo. Una respuesta vacía deja el campo sin tocar
// (o lo limpia si ya tenía valor).
func (in *Intake) fill(ctx context.Context, fields []forms.FieldSpec) error {
	for _, fs := range fields {
		if err := in.ask(ctx, fs); err != nil {
			return err
		}
	}
	return nil
}

func (in *Intake) ask(ctx context.Context, fs forms.FieldSpec) error {
	values := in.d.Snapshot().Values
	had := values.Has(fs.Name)
	msg := fs.Label
	if fs.Required {
		msg += " *"
	}

	switch fs.Kind {
	case forms.KindCheckbox:
		yes, err := in.driver.Confirm(ctx, ConfirmConfig{Message: msg, Default: values.Bool(fs.Name)})
		if err != nil {
			return err
		}
		if yes || had {
			return in.d.Change(fs.Name, yes)
		}
		return nil

	case forms.KindMultiChoice:
		labels, current := optionLabels(fs, values.Strings(fs.Name))
		idx, err := in.driver.MultiSelect(ctx, SelectConfig{Message: msg, Options: labels, Defaults: current})
		if err != nil {
			return err
		}
		if len(idx) == 0 {
			return in.clearIf(fs.Name, had)
		}
		picked := make([]string, 0, len(idx))
		for _, i := range idx {
			if i >= 0 && i < len(fs.Options) {
				picked = append(picked, fs.Options[i].Value)
			}
		}
		if len(picked) == 0 {
			return in.clearIf(fs.Name, had)
		}
		return in.d.Change(fs.Name, picked)

	case forms.KindSingleChoice, forms.KindSelect:
		labels, current := optionLabels(fs, []string{values.String(fs.Name)})
		def := 0
		if len(current) == 1 {
			def = current[0] + 1
		}
		idx, err := in.driver.Select(ctx, SelectConfig{
			Message:      msg,
			Options:      append([]string{noAnswer}, labels...),
			DefaultIndex: def,
		})
		if err != nil {
			return err
		}
		if idx <= 0 || idx > len(fs.Options) {
			return in.clearIf(fs.Name, had)
		}
		return in.d.Change(fs.Name, fs.Options[idx-1].Value)

	default:
		cfg := InputConfig{Message: msg, Default: values.String(fs.Name), Help: fs.Placeholder}
		var (
			text string
			err  error
		)
		if fs.Kind == forms.KindTextarea {
			text, err = in.driver.TextArea(ctx, cfg)
		} else {
			text, err = in.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return in.clearIf(fs.Name, had)
		}
		return in.d.Change(fs.Name, text)
	}
}

func (in *Intake) clearIf(name string, had bool) error {
	if !had {
		return nil
	}
	return in.d.Clear(name)
}

// optionLabels devuelve los labels y los índices de los valores ya elegidos.
func optionLabels(fs forms.FieldSpec, selected []string) ([]string, []int) {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	labels := make([]string, len(fs.Options))
	var idx []int
	for i, o := range fs.Options {
		labels[i] = o.Label
		if chosen[o.Value] {
			idx = append(idx, i)
		}
	}
	return labels, idx
}
