package consults

import (
	"context"
	"encoding/json"
	"errors"

	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
)

const (
	SuccessNotice         = "¡Consulta guardada exitosamente!"
	GenericFailureMessage = "Error al guardar la consulta"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrCatalogLoading      = errors.New("species catalog still loading")
	ErrNoActiveForm        = errors.New("no active form")
	ErrFormInProgress      = errors.New("another species form is in progress")
	ErrSubmissionInFlight  = errors.New("submission already in flight")
	ErrSubmissionAbandoned = errors.New("submission abandoned")
	ErrDispatcherClosed    = errors.New("dispatcher closed")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnknownField        = forms.ErrUnknownField
	ErrInvalidValue        = forms.ErrInvalidValue
	ErrUnsupportedSpecies  = species.ErrUnsupportedSpecies
)

// State del dispatcher.
// @Enum loading, picking, filling, submitting, submitted-ok, submitted-error
type State string

const (
	StateLoading        State = "loading"
	StatePicking        State = "picking"
	StateFilling        State = "filling"
	StateSubmitting     State = "submitting"
	StateSubmittedOK    State = "submitted-ok"
	StateSubmittedError State = "submitted-error"
)

// Payload es el body de POST /api/animal-consults.
type Payload struct {
	VeterinarianID   string       `json:"veterinarian_id"`
	Species          string       `json:"species"`
	ConsultationData forms.Values `json:"consultation_data"`
}

// Result es el desenlace de un envío: éxito con el body del server
// o fallo con un mensaje listo para mostrar.
type Result struct {
	OK      bool
	Body    json.RawMessage
	Message string
}

func Success(body json.RawMessage) Result {
	return Result{OK: true, Body: body}
}

// Failure usa el mensaje genérico si msg viene vacío.
func Failure(msg string) Result {
	if msg == "" {
		msg = GenericFailureMessage
	}
	return Result{Message: msg}
}

// CatalogSource provee la lista de especies (GET /api/species).
type CatalogSource interface {
	ListSpecies(ctx context.Context) ([]species.Descriptor, error)
}

// Submitter persiste una consulta (POST /api/animal-consults).
type Submitter interface {
	CreateConsultation(ctx context.Context, p Payload) Result
}

// FormSource resuelve el catálogo de campos de una especie. species.Registry lo implementa.
type FormSource interface {
	Form(id string) (*forms.Form, error)
}

// Snapshot es la vista inmutable que consumen los renderers (html, json, terminal).
type Snapshot struct {
	State       State
	Catalog     []species.Descriptor
	SpeciesID   string
	SpeciesName string
	Form        *forms.Form
	Values      forms.Values
	FieldErrors map[string]string
	Notice      string
	Error       string
	Unsupported bool
}

// Picking indica si hay que mostrar el selector de especie.
func (s Snapshot) Picking() bool {
	return s.State == StatePicking
}
