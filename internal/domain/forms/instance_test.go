package forms

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// -------------------------
// Helpers
// -------------------------

func testForm() *Form {
	return &Form{
		Species: "erizo",
		Title:   "Formulario de Consulta - ERIZO",
		Accent:  "orange",
		Groups: []Group{
			{
				Title: "DATOS DEL PACIENTE",
				Fields: []FieldSpec{
					{Name: "nombre_paciente", Label: "Nombre del paciente", Kind: KindText, Required: true},
					{Name: "sexo", Label: "Sexo", Kind: KindSingleChoice, Options: []Option{
						{Value: "macho", Label: "Macho"},
						{Value: "hembra", Label: "Hembra"},
					}},
				},
			},
			{
				Title: "SISTEMA DIGESTIVO",
				Fields: []FieldSpec{
					{Name: "heces", Label: "Heces", Kind: KindMultiChoice, Options: []Option{
						{Value: "normales", Label: "Normales"},
						{Value: "diarrea", Label: "Diarrea"},
						{Value: "verdes", Label: "Verdes"},
					}},
					{Name: "vacunado", Label: "Vacunado", Kind: KindCheckbox},
					{Name: "icc", Label: "ICC", Kind: KindSelect, Options: []Option{
						{Value: "1-3", Label: "1-3"},
						{Value: "4-5", Label: "4-5"},
					}},
					{Name: "notas", Label: "Notas", Kind: KindTextarea},
				},
			},
		},
	}
}

// -------------------------
// Tests
// -------------------------

func TestCheck_AcceptsWellFormedForm(t *testing.T) {
	if err := testForm().Check(); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
}

func TestCheck_RejectsBrokenSchemas(t *testing.T) {
	cases := map[string]func(f *Form){
		"duplicate name": func(f *Form) {
			f.Groups[1].Fields[0].Name = "nombre_paciente"
		},
		"unknown kind": func(f *Form) {
			f.Groups[0].Fields[0].Kind = "slider"
		},
		"choice without options": func(f *Form) {
			f.Groups[0].Fields[1].Options = nil
		},
		"options on text": func(f *Form) {
			f.Groups[0].Fields[0].Options = []Option{{Value: "x"}}
		},
		"repeated option": func(f *Form) {
			f.Groups[1].Fields[2].Options = []Option{{Value: "1-3"}, {Value: "1-3"}}
		},
		"empty group": func(f *Form) {
			f.Groups[1].Fields = nil
		},
	}

	for name, mutate := range cases {
		f := testForm()
		mutate(f)
		if err := f.Check(); !errors.Is(err, ErrInvalidSchema) {
			t.Fatalf("%s: expected ErrInvalidSchema, got %v", name, err)
		}
	}
}

func TestSubmit_MissingRequired_BlocksAndKeepsValues(t *testing.T) {
	in := NewInstance(testForm())
	if err := in.Change("sexo", "hembra"); err != nil {
		t.Fatalf("Change: %v", err)
	}

	calls := 0
	err := in.Submit(func(Values) { calls++ })

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("onSubmit must not be called, got %d calls", calls)
	}
	if diff := cmp.Diff(map[string]string{"nombre_paciente": RequiredMessage}, in.Errors()); diff != "" {
		t.Fatalf("inline errors mismatch (-want +got):\n%s", diff)
	}
	if in.Values().String("sexo") != "hembra" {
		t.Fatalf("values must be kept after failed validation")
	}
}

func TestSubmit_WhitespaceCountsAsEmpty(t *testing.T) {
	in := NewInstance(testForm())
	_ = in.Change("nombre_paciente", "   ")

	if err := in.Submit(func(Values) { t.Fatal("onSubmit must not be called") }); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSubmit_OnlyTouchedFields_CalledOnce(t *testing.T) {
	in := NewInstance(testForm())

	mustChange(t, in, "nombre_paciente", "Sonic")
	mustChange(t, in, "heces", []any{"verdes", "normales", "verdes"})
	mustChange(t, in, "vacunado", "on")

	var got []Values
	if err := in.Submit(func(v Values) { got = append(got, v) }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one onSubmit call, got %d", len(got))
	}

	want := Values{
		"nombre_paciente": "Sonic",
		"heces":           []string{"normales", "verdes"},
		"vacunado":        true,
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	for _, untouched := range []string{"sexo", "icc", "notas"} {
		if got[0].Has(untouched) {
			t.Fatalf("untouched field %q must be absent", untouched)
		}
	}
}

func TestSubmit_ValuesAreACopy(t *testing.T) {
	in := NewInstance(testForm())
	mustChange(t, in, "nombre_paciente", "Sonic")
	mustChange(t, in, "heces", []string{"diarrea"})

	var submitted Values
	_ = in.Submit(func(v Values) { submitted = v })
	submitted["nombre_paciente"] = "otro"
	submitted.Strings("heces")[0] = "normales"

	if in.Values().String("nombre_paciente") != "Sonic" || in.Values().Strings("heces")[0] != "diarrea" {
		t.Fatalf("instance values must not alias submitted copy: %#v", in.Values())
	}
}

func TestChange_ClearsInlineError(t *testing.T) {
	in := NewInstance(testForm())
	_ = in.Submit(nil)
	if len(in.Errors()) != 1 {
		t.Fatalf("expected one inline error, got %#v", in.Errors())
	}

	mustChange(t, in, "nombre_paciente", "Sonic")
	if len(in.Errors()) != 0 {
		t.Fatalf("expected inline error cleared, got %#v", in.Errors())
	}
}

func TestChange_RejectsUnknownFieldAndBadValues(t *testing.T) {
	in := NewInstance(testForm())

	if err := in.Change("no_existe", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	bad := map[string]any{
		"sexo":            "otro",
		"icc":             []string{"1-3"},
		"heces":           []any{"normales", 3},
		"vacunado":        "quizas",
		"nombre_paciente": 42,
	}
	for name, v := range bad {
		if err := in.Change(name, v); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("%s=%v: expected ErrInvalidValue, got %v", name, v, err)
		}
	}
	if len(in.Values()) != 0 {
		t.Fatalf("rejected values must not be stored: %#v", in.Values())
	}
}

func TestClear_MakesFieldUntouched(t *testing.T) {
	in := NewInstance(testForm())
	mustChange(t, in, "notas", "tos seca")

	if err := in.Clear("notas"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if in.Values().Has("notas") {
		t.Fatal("expected notas to be untouched after Clear")
	}
}

func TestCancel_CallsOnCancelImmediately(t *testing.T) {
	in := NewInstance(testForm())
	mustChange(t, in, "nombre_paciente", "Sonic")

	called := false
	in.Cancel(func() { called = true })
	if !called {
		t.Fatal("expected onCancel to be called")
	}
}

func mustChange(t *testing.T, in *Instance, name string, v any) {
	t.Helper()
	if err := in.Change(name, v); err != nil {
		t.Fatalf("Change(%s): %v", name, err)
	}
}
