package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
)

// -------------------------
// Fakes
// -------------------------

type stubDriver struct {
	inputs    []string
	textAreas []string
	selects   []int
	multis    [][]int
	confirms  []bool
	infos     []string

	// failInput hace que el próximo Input devuelva este error.
	failInput error
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.failInput != nil {
		return "", s.failInput
	}
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ InputConfig) (string, error) {
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	v := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return v, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if len(s.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if len(s.multis) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	v := s.multis[0]
	s.multis = s.multis[1:]
	return v, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *stubDriver) sawInfo(sub string) bool {
	for _, m := range s.infos {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

type demoForms struct{}

var demoForm = &forms.Form{
	Species: "demo",
	Title:   "Formulario de Consulta - DEMO",
	Groups: []forms.Group{{
		Title: "Datos",
		Fields: []forms.FieldSpec{
			{Name: "nombre", Label: "Nombre", Kind: forms.KindText, Required: true},
			{Name: "notas", Label: "Notas", Kind: forms.KindTextarea},
			{Name: "sexo", Label: "Sexo", Kind: forms.KindSingleChoice, Options: []forms.Option{
				{Value: "macho", Label: "Macho"}, {Value: "hembra", Label: "Hembra"},
			}},
			{Name: "dieta", Label: "Dieta", Kind: forms.KindMultiChoice, Options: []forms.Option{
				{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"},
			}},
			{Name: "vacunado", Label: "Vacunado", Kind: forms.KindCheckbox},
		},
	}},
}

func (demoForms) Form(id string) (*forms.Form, error) {
	if id == "demo" {
		return demoForm, nil
	}
	return nil, species.ErrUnsupportedSpecies
}

type demoCatalog struct{}

func (demoCatalog) ListSpecies(ctx context.Context) ([]species.Descriptor, error) {
	return []species.Descriptor{{ID: "demo", Name: "Demo"}, {ID: "dragon", Name: "Dragón"}}, nil
}

type queueSubmitter struct {
	mu       sync.Mutex
	results  []consults.Result
	payloads []consults.Payload
}

func (q *queueSubmitter) CreateConsultation(ctx context.Context, p consults.Payload) consults.Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, p)
	if len(q.results) == 0 {
		return consults.Success(json.RawMessage(`{"id":"c-1"}`))
	}
	r := q.results[0]
	q.results = q.results[1:]
	return r
}

func newIntake(t *testing.T, drv *stubDriver, sub *queueSubmitter) (*Intake, *consults.Dispatcher) {
	t.Helper()
	d, err := consults.New(consults.Options{
		Catalog:        demoCatalog{},
		Forms:          demoForms{},
		Submitter:      sub,
		VeterinarianID: "vet-1",
		ResetDelay:     time.Hour,
	})
	if err != nil {
		t.Fatalf("consults.New: %v", err)
	}
	t.Cleanup(d.Close)
	return NewIntake(d, drv, nil), d
}

// -------------------------
// Tests
// -------------------------

func TestRun_ValidationThenSubmitOnlyTouchedFields(t *testing.T) {
	drv := &stubDriver{
		// especie, sexo sin respuesta, guardar, guardar, salir
		selects:   []int{0, 0, 0, 0, 2},
		inputs:    []string{"", "Luna"},
		textAreas: []string{"  "},
		multis:    [][]int{nil},
		confirms:  []bool{false},
	}
	sub := &queueSubmitter{}
	in, d := newIntake(t, drv, sub)

	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !drv.sawInfo("Nombre: " + forms.RequiredMessage) {
		t.Fatalf("expected required message, got %v", drv.infos)
	}
	if !drv.sawInfo(consults.SuccessNotice) {
		t.Fatalf("expected success notice, got %v", drv.infos)
	}
	if len(sub.payloads) != 1 {
		t.Fatalf("expected one submission, got %d", len(sub.payloads))
	}
	if diff := cmp.Diff(forms.Values{"nombre": "Luna"}, sub.payloads[0].ConsultationData); diff != "" {
		t.Fatalf("consultation_data mismatch (-want +got):\n%s", diff)
	}
	if s := d.Snapshot(); s.State != consults.StatePicking {
		t.Fatalf("expected picking after exit, got %s", s.State)
	}
}

func TestRun_BackendFailureThenRetry(t *testing.T) {
	drv := &stubDriver{
		// especie, sexo=hembra, guardar (falla), guardar (ok), salir
		selects:   []int{0, 2, 0, 0, 2},
		inputs:    []string{"Luna"},
		textAreas: []string{"tose"},
		multis:    [][]int{{2, 0}},
		confirms:  []bool{true},
	}
	sub := &queueSubmitter{results: []consults.Result{consults.Failure("Veterinarian not found")}}
	in, _ := newIntake(t, drv, sub)

	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !drv.sawInfo("Veterinarian not found") {
		t.Fatalf("expected backend message, got %v", drv.infos)
	}
	if len(sub.payloads) != 2 {
		t.Fatalf("expected retry to resubmit, got %d submissions", len(sub.payloads))
	}
	want := forms.Values{
		"nombre":   "Luna",
		"notas":    "tose",
		"sexo":     "hembra",
		"dieta":    []string{"a", "c"},
		"vacunado": true,
	}
	for i, p := range sub.payloads {
		if diff := cmp.Diff(want, p.ConsultationData); diff != "" {
			t.Fatalf("submission %d mismatch (-want +got):\n%s", i, diff)
		}
		if p.VeterinarianID != "vet-1" || p.Species != "demo" {
			t.Fatalf("unexpected payload header: %#v", p)
		}
	}
}

func TestRun_UnsupportedSpecies(t *testing.T) {
	drv := &stubDriver{selects: []int{1, 2}}
	sub := &queueSubmitter{}
	in, _ := newIntake(t, drv, sub)

	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !drv.sawInfo("Especie no soportada") {
		t.Fatalf("expected unsupported notice, got %v", drv.infos)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("unsupported species must not submit")
	}
}

func TestRun_CancelDiscardsForm(t *testing.T) {
	drv := &stubDriver{
		// especie, sexo sin respuesta, cancelar, salir
		selects:   []int{0, 0, 2, 2},
		inputs:    []string{"Luna"},
		textAreas: []string{""},
		multis:    [][]int{nil},
		confirms:  []bool{false},
	}
	sub := &queueSubmitter{}
	in, d := newIntake(t, drv, sub)

	if err := in.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("cancel must not submit")
	}
	if s := d.Snapshot(); s.SpeciesID != "" || len(s.Values) != 0 {
		t.Fatalf("expected clean state, got %#v", s)
	}
}

func TestRun_AbortResetsDispatcher(t *testing.T) {
	drv := &stubDriver{selects: []int{0}, failInput: ErrAborted}
	in, d := newIntake(t, drv, &queueSubmitter{})

	if err := in.Run(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if s := d.Snapshot(); s.State != consults.StatePicking {
		t.Fatalf("expected picking after abort, got %s", s.State)
	}
}
