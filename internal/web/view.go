package web

import (
	"math"
	"time"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
)

// pongo2 no indexa mapas con variables, así que la página llega pre-armada.
type pageView struct {
	State       string
	Title       string
	Accent      string
	SpeciesID   string
	SpeciesName string
	Notice      string
	Error       string
	Catalog     []species.Descriptor
	Groups      []groupView
	Picking     bool
	Unsupported bool
	Locked      bool
	Refresh     int
}

type groupView struct {
	Title  string
	Fields []fieldView
}

type fieldView struct {
	Name        string
	Label       string
	Kind        string
	Input       string
	Placeholder string
	Required    bool
	Text        string
	Checked     bool
	Options     []optionView
	Error       string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

func buildPage(s consults.Snapshot, resetDelay time.Duration) pageView {
	p := pageView{
		State:       string(s.State),
		SpeciesID:   s.SpeciesID,
		SpeciesName: s.SpeciesName,
		Notice:      s.Notice,
		Error:       s.Error,
		Catalog:     s.Catalog,
		Picking:     s.Picking(),
		Unsupported: s.Unsupported,
		Locked:      s.State == consults.StateSubmitting || s.State == consults.StateSubmittedOK,
	}
	if s.State == consults.StateSubmittedOK {
		p.Refresh = int(math.Ceil(resetDelay.Seconds()))
		if p.Refresh < 1 {
			p.Refresh = 1
		}
	}
	if s.Form == nil {
		return p
	}

	p.Title = s.Form.Title
	p.Accent = s.Form.Accent
	for _, g := range s.Form.Groups {
		gv := groupView{Title: g.Title, Fields: make([]fieldView, 0, len(g.Fields))}
		for _, fs := range g.Fields {
			gv.Fields = append(gv.Fields, buildField(fs, s.Values, s.FieldErrors[fs.Name]))
		}
		p.Groups = append(p.Groups, gv)
	}
	return p
}

func buildField(fs forms.FieldSpec, values forms.Values, errMsg string) fieldView {
	fv := fieldView{
		Name:        fs.Name,
		Label:       fs.Label,
		Kind:        string(fs.Kind),
		Input:       fs.Input,
		Placeholder: fs.Placeholder,
		Required:    fs.Required,
		Error:       errMsg,
	}

	switch fs.Kind {
	case forms.KindCheckbox:
		fv.Checked = values.Bool(fs.Name)
	case forms.KindMultiChoice:
		picked := make(map[string]bool)
		for _, v := range values.Strings(fs.Name) {
			picked[v] = true
		}
		for _, o := range fs.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: picked[o.Value]})
		}
	case forms.KindSingleChoice, forms.KindSelect:
		cur := values.String(fs.Name)
		for _, o := range fs.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == cur})
		}
	default:
		fv.Text = values.String(fs.Name)
	}
	return fv
}
