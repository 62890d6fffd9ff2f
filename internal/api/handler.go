package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/middleware"
	"vet-consult-intake/internal/platform/logger"
)

const SessionHeader = "X-Intake-Session"

type Options struct {
	Sessions *consults.Sessions
	Registry *species.Registry
	Logger   logger.Logger
}

func RegisterRoutes(r chi.Router, opts Options) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	r.Route("/v1", func(vr chi.Router) {
		vr.Get("/species", listSpeciesHandler(opts))
		vr.Get("/forms/{speciesID}", getFormHandler(opts))

		vr.Route("/session", func(sr chi.Router) {
			sr.Get("/", getSessionHandler(opts))
			sr.Post("/species", selectSpeciesHandler(opts))
			sr.Patch("/values", patchValuesHandler(opts))
			sr.Post("/submit", submitHandler(opts))
			sr.Post("/cancel", cancelHandler(opts))
		})
	})
}

type speciesResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Accent     string `json:"accent"`
	FieldCount int    `json:"field_count"`
}

type selectSpeciesRequest struct {
	Species string `json:"species"`
}

type patchValuesRequest struct {
	// Valores por nombre de campo: string, []string (multi-choice) o bool (checkbox).
	Values map[string]any `json:"values"`
	// Campos a volver a "no tocado".
	Clear []string `json:"clear"`
}

type sessionResponse struct {
	SessionID   string               `json:"session_id"`
	State       consults.State       `json:"state"`
	Catalog     []species.Descriptor `json:"catalog"`
	Species     string               `json:"species,omitempty"`
	SpeciesName string               `json:"species_name,omitempty"`
	Unsupported bool                 `json:"unsupported"`
	Values      forms.Values         `json:"values"`
	FieldErrors map[string]string    `json:"field_errors"`
	Notice      string               `json:"notice,omitempty"`
	Error       string               `json:"error,omitempty"`
}

type submitResponse struct {
	Session  sessionResponse `json:"session"`
	OK       bool            `json:"ok"`
	Response json.RawMessage `json:"response,omitempty" swaggertype:"object"`
	Message  string          `json:"message,omitempty"`
}

// @Summary Listar especies con formulario
// @Description Especies con catálogo de campos embebido, en orden de display. Los nombres salen de la lista fija de especies.
// @Tags species
// @Produce json
// @Success 200 {array} speciesResponse
// @Router /v1/species [get]
func listSpeciesHandler(opts Options) http.HandlerFunc {
	names := make(map[string]string)
	for _, d := range species.Fallback() {
		names[d.ID] = d.Name
	}

	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]speciesResponse, 0)
		for _, id := range opts.Registry.IDs() {
			f, err := opts.Registry.Form(id)
			if err != nil {
				continue
			}
			name := names[id]
			if name == "" {
				name = id
			}
			out = append(out, speciesResponse{
				ID:         id,
				Name:       name,
				Title:      f.Title,
				Accent:     f.Accent,
				FieldCount: len(f.Fields()),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Obtener el formulario de una especie
// @Description Devuelve grupos y campos (name, kind, options, required). name y los valores de options son el vocabulario que se persiste en consultation_data.
// @Tags species
// @Produce json
// @Param speciesID path string true "ID de la especie (perro, gato, ...)"
// @Success 200 {object} forms.Form
// @Failure 404 {string} string "unsupported species"
// @Router /v1/forms/{speciesID} [get]
func getFormHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := opts.Registry.Form(chi.URLParam(r, "speciesID"))
		if err != nil {
			http.Error(w, "unsupported species", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

// @Summary Ver la sesión de consulta
// @Description Abre una sesión si el header X-Intake-Session falta o expiró; el id vigente vuelve en el mismo header. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags session
// @Produce json
// @Param X-Intake-Session header string false "ID de sesión"
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} sessionResponse
// @Router /v1/session [get]
func getSessionHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, d, ok := openSession(w, r, opts)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sid, d.Snapshot()))
	}
}

// @Summary Seleccionar especie
// @Description Monta un formulario vacío. La misma especie con un formulario abierto no cambia nada; otra especie devuelve 409. Una especie sin formulario queda con unsupported=true.
// @Tags session
// @Accept json
// @Produce json
// @Param X-Intake-Session header string false "ID de sesión"
// @Param payload body selectSpeciesRequest true "Especie"
// @Success 200 {object} sessionResponse
// @Failure 400 {string} string "invalid json / species is required"
// @Failure 409 {string} string "another species form is in progress"
// @Router /v1/session/species [post]
func selectSpeciesHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, d, ok := openSession(w, r, opts)
		if !ok {
			return
		}

		var req selectSpeciesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Species) == "" {
			http.Error(w, "species is required", http.StatusBadRequest)
			return
		}

		if err := d.SelectSpecies(req.Species); err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sid, d.Snapshot()))
	}
}

// @Summary Cargar valores del formulario
// @Description Aplica primero clear y luego values. Un valor inválido corta la operación con 400; los cambios previos del mismo request quedan aplicados.
// @Tags session
// @Accept json
// @Produce json
// @Param X-Intake-Session header string false "ID de sesión"
// @Param payload body patchValuesRequest true "Valores por nombre de campo"
// @Success 200 {object} sessionResponse
// @Failure 400 {string} string "invalid json / unknown field / invalid field value"
// @Failure 409 {string} string "no active form / submission already in flight"
// @Failure 422 {string} string "unsupported species"
// @Router /v1/session/values [patch]
func patchValuesHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, d, ok := openSession(w, r, opts)
		if !ok {
			return
		}

		var req patchValuesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		for _, name := range req.Clear {
			if err := d.Clear(name); err != nil {
				writeDispatchError(w, err)
				return
			}
		}
		for name, v := range req.Values {
			if err := d.Change(name, v); err != nil {
				writeDispatchError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sid, d.Snapshot()))
	}
}

// @Summary Enviar la consulta
// @Description Valida campos requeridos y hace POST /api/animal-consults. Validación fallida: 422 con field_errors. Fallo del backend: 200 con ok=false y el mensaje; la especie y los valores se conservan para reintentar. Éxito: ok=true con la respuesta del backend; la sesión vuelve a picking después del delay configurado.
// @Tags session
// @Produce json
// @Param X-Intake-Session header string false "ID de sesión"
// @Success 200 {object} submitResponse
// @Failure 409 {string} string "no active form / submission already in flight"
// @Failure 422 {object} sessionResponse
// @Router /v1/session/submit [post]
func submitHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, d, ok := openSession(w, r, opts)
		if !ok {
			return
		}

		res, err := d.Submit(r.Context())
		var verr *forms.ValidationError
		switch {
		case err == nil:
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, toSessionResponse(sid, d.Snapshot()))
			return
		default:
			writeDispatchError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, submitResponse{
			Session:  toSessionResponse(sid, d.Snapshot()),
			OK:       res.OK,
			Response: res.Body,
			Message:  res.Message,
		})
	}
}

// @Summary Cancelar el formulario
// @Description Descarta especie y valores sin confirmación.
// @Tags session
// @Produce json
// @Param X-Intake-Session header string false "ID de sesión"
// @Success 200 {object} sessionResponse
// @Router /v1/session/cancel [post]
func cancelHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, d, ok := openSession(w, r, opts)
		if !ok {
			return
		}
		if err := d.Cancel(); err != nil {
			writeDispatchError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sid, d.Snapshot()))
	}
}

func openSession(w http.ResponseWriter, r *http.Request, opts Options) (string, *consults.Dispatcher, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "veterinarian identity unavailable", http.StatusServiceUnavailable)
		return "", nil, false
	}

	sid, d, _, err := opts.Sessions.Open(r.Context(), strings.TrimSpace(r.Header.Get(SessionHeader)), id.VeterinarianID)
	if err != nil {
		opts.Logger.Error("open session failed", map[string]any{"error": err})
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return "", nil, false
	}
	w.Header().Set(SessionHeader, sid)
	return sid, d, true
}

func toSessionResponse(sid string, s consults.Snapshot) sessionResponse {
	return sessionResponse{
		SessionID:   sid,
		State:       s.State,
		Catalog:     s.Catalog,
		Species:     s.SpeciesID,
		SpeciesName: s.SpeciesName,
		Unsupported: s.Unsupported,
		Values:      s.Values,
		FieldErrors: s.FieldErrors,
		Notice:      s.Notice,
		Error:       s.Error,
	}
}

func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, consults.ErrInvalidInput),
		errors.Is(err, consults.ErrUnknownField),
		errors.Is(err, consults.ErrInvalidValue):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, consults.ErrUnsupportedSpecies):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, consults.ErrFormInProgress),
		errors.Is(err, consults.ErrNoActiveForm),
		errors.Is(err, consults.ErrSubmissionInFlight),
		errors.Is(err, consults.ErrSubmissionAbandoned),
		errors.Is(err, consults.ErrCatalogLoading),
		errors.Is(err, consults.ErrDispatcherClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
