package consults

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/platform/logger"
)

const DefaultResetDelay = 2 * time.Second

type Options struct {
	Catalog   CatalogSource // nil => siempre fallback
	Forms     FormSource
	Submitter Submitter

	// Identidad del veterinario, provista desde afuera. Solo lectura.
	VeterinarianID string

	// ResetDelay <= 0 usa DefaultResetDelay.
	ResetDelay time.Duration
	Clock      Clock
	Logger     logger.Logger

	// OnSuccess recibe el body de la respuesta del backend. Se llama fuera del lock.
	OnSuccess func(body json.RawMessage)
}

// Dispatcher es el ciclo de vida de selección de especie + envío para una sesión.
// Es seguro para uso concurrente; la llamada de red corre fuera del lock,
// protegida por el estado submitting.
type Dispatcher struct {
	catalogSrc CatalogSource
	formsSrc   FormSource
	submitter  Submitter
	vetID      string
	resetDelay time.Duration
	clock      Clock
	log        logger.Logger
	onSuccess  func(json.RawMessage)

	loadOnce sync.Once

	mu          sync.Mutex
	state       State
	catalog     []species.Descriptor
	speciesID   string
	instance    *forms.Instance
	unsupported bool
	notice      string
	errMsg      string
	timer       Timer
	gen         uint64
	closed      bool
}

func New(opts Options) (*Dispatcher, error) {
	if opts.Forms == nil || opts.Submitter == nil {
		return nil, fmt.Errorf("%w: forms and submitter are required", ErrInvalidInput)
	}
	vetID := strings.TrimSpace(opts.VeterinarianID)
	if vetID == "" {
		return nil, fmt.Errorf("%w: veterinarian id is required", ErrInvalidInput)
	}

	d := &Dispatcher{
		catalogSrc: opts.Catalog,
		formsSrc:   opts.Forms,
		submitter:  opts.Submitter,
		vetID:      vetID,
		resetDelay: opts.ResetDelay,
		clock:      opts.Clock,
		log:        opts.Logger,
		onSuccess:  opts.OnSuccess,
		state:      StateLoading,
	}
	if d.resetDelay <= 0 {
		d.resetDelay = DefaultResetDelay
	}
	if d.clock == nil {
		d.clock = RealClock()
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	d.log = d.log.With(map[string]any{"veterinarian_id": vetID})
	return d, nil
}

func (d *Dispatcher) VeterinarianID() string { return d.vetID }

// LoadSpeciesCatalog se ejecuta una sola vez. Cualquier fallo (red, no-2xx,
// body inválido, lista vacía) se reemplaza en silencio por la lista fallback.
// Siempre termina en picking.
func (d *Dispatcher) LoadSpeciesCatalog(ctx context.Context) {
	d.loadOnce.Do(func() {
		list := d.fetchCatalog(ctx)

		d.mu.Lock()
		defer d.mu.Unlock()
		d.catalog = list
		if d.state == StateLoading {
			d.state = StatePicking
		}
	})
}

func (d *Dispatcher) fetchCatalog(ctx context.Context) []species.Descriptor {
	if d.catalogSrc == nil {
		return species.Fallback()
	}

	list, err := d.catalogSrc.ListSpecies(ctx)
	if err == nil && len(list) == 0 {
		err = errors.New("empty species list")
	}
	if err != nil {
		d.log.Warn("species catalog unavailable, using fallback", map[string]any{"error": err})
		return species.Fallback()
	}
	return append([]species.Descriptor(nil), list...)
}

// SelectSpecies monta un formulario vacío para id. Si no hay catálogo de campos
// para id, entra igual en filling con Unsupported=true.
// Re-seleccionar la misma especie es un no-op; otra especie con un formulario
// activo devuelve ErrFormInProgress.
func (d *Dispatcher) SelectSpecies(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: species id is empty", ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	switch d.state {
	case StateLoading:
		return ErrCatalogLoading
	case StatePicking:
	default:
		if id == d.speciesID {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrFormInProgress, d.speciesID)
	}

	d.speciesID = id
	d.notice = ""
	d.errMsg = ""
	d.state = StateFilling

	form, err := d.formsSrc.Form(id)
	if err != nil {
		d.instance = nil
		d.unsupported = true
		d.log.Warn("unsupported species selected", map[string]any{"species": id})
		return nil
	}
	d.instance = forms.NewInstance(form)
	d.unsupported = false
	return nil
}

// Change escribe un campo del formulario activo.
func (d *Dispatcher) Change(name string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.editableLocked(); err != nil {
		return err
	}
	return d.instance.Change(name, value)
}

// Clear deja un campo como no tocado.
func (d *Dispatcher) Clear(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.editableLocked(); err != nil {
		return err
	}
	return d.instance.Clear(name)
}

func (d *Dispatcher) editableLocked() error {
	if d.closed {
		return ErrDispatcherClosed
	}
	switch d.state {
	case StateFilling, StateSubmittedError:
	case StateSubmitting:
		return ErrSubmissionInFlight
	default:
		return ErrNoActiveForm
	}
	if d.unsupported || d.instance == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedSpecies, d.speciesID)
	}
	return nil
}

// Submit valida el formulario activo y, si pasa, envía el Payload.
// Un fallo de validación devuelve *forms.ValidationError y deja el estado en filling.
// Un fallo del backend NO es un error de Submit: viene en Result y queda
// como banner (submitted-error) con especie y valores intactos.
func (d *Dispatcher) Submit(ctx context.Context) (Result, error) {
	d.mu.Lock()

	if err := d.submittableLocked(); err != nil {
		d.mu.Unlock()
		return Result{}, err
	}

	var values forms.Values
	if err := d.instance.Submit(func(v forms.Values) { values = v }); err != nil {
		d.state = StateFilling
		d.errMsg = ""
		d.mu.Unlock()
		return Result{}, err
	}

	p := Payload{
		VeterinarianID:   d.vetID,
		Species:          d.speciesID,
		ConsultationData: values,
	}
	d.state = StateSubmitting
	d.errMsg = ""
	gen := d.gen
	d.mu.Unlock()

	res := d.submitter.CreateConsultation(ctx, p)

	d.mu.Lock()
	if d.closed || d.gen != gen {
		d.mu.Unlock()
		d.log.Info("submission finished after cancel, result dropped", map[string]any{
			"species": p.Species,
			"ok":      res.OK,
		})
		return res, ErrSubmissionAbandoned
	}

	if !res.OK {
		if res.Message == "" {
			res.Message = GenericFailureMessage
		}
		d.state = StateSubmittedError
		d.errMsg = res.Message
		d.mu.Unlock()
		d.log.Warn("consultation not saved", map[string]any{
			"species": p.Species,
			"message": res.Message,
		})
		return res, nil
	}

	d.state = StateSubmittedOK
	d.notice = SuccessNotice
	d.armResetLocked(gen)
	onSuccess := d.onSuccess
	d.mu.Unlock()

	d.log.Info("consultation saved", map[string]any{
		"species":         p.Species,
		"consultation_id": createdID(res.Body),
		"fields":          len(p.ConsultationData),
	})
	if onSuccess != nil {
		onSuccess(res.Body)
	}
	return res, nil
}

func (d *Dispatcher) submittableLocked() error {
	if d.closed {
		return ErrDispatcherClosed
	}
	switch d.state {
	case StateFilling, StateSubmittedError:
	case StateSubmitting:
		return ErrSubmissionInFlight
	default:
		return ErrNoActiveForm
	}
	if d.unsupported || d.instance == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedSpecies, d.speciesID)
	}
	if !species.Contains(d.catalog, d.speciesID) {
		return fmt.Errorf("%w: %q is not in the species catalog", ErrUnsupportedSpecies, d.speciesID)
	}
	return nil
}

// armResetLocked programa el regreso a picking. El timer lleva la generación
// vigente; si Cancel/Close la cambian, el disparo es un no-op.
func (d *Dispatcher) armResetLocked(gen uint64) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.resetDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || d.gen != gen {
			return
		}
		d.timer = nil
		d.resetLocked()
	})
}

// Cancel descarta especie y valores sin confirmación y vuelve a picking.
// Un envío en curso queda abandonado: su resultado se ignora.
func (d *Dispatcher) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	if d.state == StateLoading {
		return ErrCatalogLoading
	}

	d.stopTimerLocked()
	d.gen++
	if d.instance != nil {
		d.instance.Cancel(d.resetLocked)
		return nil
	}
	d.resetLocked()
	return nil
}

func (d *Dispatcher) resetLocked() {
	d.speciesID = ""
	d.instance = nil
	d.unsupported = false
	d.notice = ""
	d.errMsg = ""
	d.state = StatePicking
}

func (d *Dispatcher) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close corta el timer pendiente; después de Close nada muta el dispatcher.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTimerLocked()
	d.gen++
	d.closed = true
}

func (d *Dispatcher) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		State:       d.state,
		Catalog:     append([]species.Descriptor(nil), d.catalog...),
		SpeciesID:   d.speciesID,
		Notice:      d.notice,
		Error:       d.errMsg,
		Unsupported: d.unsupported,
		Values:      forms.Values{},
		FieldErrors: map[string]string{},
	}
	for _, sd := range d.catalog {
		if sd.ID == d.speciesID {
			s.SpeciesName = sd.Name
			break
		}
	}
	if d.instance != nil {
		s.Form = d.instance.Form()
		s.Values = d.instance.Values()
		s.FieldErrors = d.instance.Errors()
	}
	return s
}

// createdID extrae "id" de la respuesta {message, id, consultation}. Solo para logs.
func createdID(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.ID
}
