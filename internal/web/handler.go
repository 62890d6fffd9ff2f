package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/middleware"
	"vet-consult-intake/internal/platform/logger"
)

const SessionCookie = "intake_session"

type Options struct {
	Sessions   *consults.Sessions
	Renderer   *Renderer
	Logger     logger.Logger
	ResetDelay time.Duration
	// SecureCookie marca la cookie de sesión como Secure (https).
	SecureCookie bool
}

func RegisterRoutes(r chi.Router, opts Options) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = consults.DefaultResetDelay
	}

	r.Get("/", indexHandler(opts))
	r.Route("/consults", func(cr chi.Router) {
		cr.Post("/species", selectSpeciesHandler(opts))
		cr.Post("/submit", submitHandler(opts))
		cr.Post("/cancel", cancelHandler(opts))
	})
}

// session abre (o crea) la sesión del navegador para la identidad del request.
func session(w http.ResponseWriter, r *http.Request, opts Options) (*consults.Dispatcher, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "veterinarian identity unavailable", http.StatusServiceUnavailable)
		return nil, false
	}

	var sid string
	if c, err := r.Cookie(SessionCookie); err == nil {
		sid = c.Value
	}

	newSID, d, created, err := opts.Sessions.Open(r.Context(), sid, id.VeterinarianID)
	if err != nil {
		opts.Logger.Error("open session failed", map[string]any{"error": err})
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    newSID,
			Path:     "/",
			HttpOnly: true,
			Secure:   opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return d, true
}

func indexHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := session(w, r, opts)
		if !ok {
			return
		}

		page := buildPage(d.Snapshot(), opts.ResetDelay)

		var buf bytes.Buffer
		if err := opts.Renderer.Render(&buf, "index.html", pongo2.Context{"page": page}); err != nil {
			opts.Logger.Error("render index failed", map[string]any{"error": err})
			http.Error(w, "render error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}

func selectSpeciesHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := session(w, r, opts)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		err := d.SelectSpecies(r.PostForm.Get("species"))
		switch {
		case err == nil, errors.Is(err, consults.ErrFormInProgress):
			// con un formulario abierto solo se vuelve a mostrarlo
		case errors.Is(err, consults.ErrInvalidInput):
			http.Error(w, "species is required", http.StatusBadRequest)
			return
		default:
			writeDispatchError(w, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func submitHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := session(w, r, opts)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		if err := applyPostedValues(d, r.PostForm); err != nil {
			if stale(err) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			writeDispatchError(w, err)
			return
		}

		_, err := d.Submit(r.Context())
		var verr *forms.ValidationError
		switch {
		case err == nil, errors.As(err, &verr), stale(err):
			// errores inline, banner o doble click: los muestra GET /
		default:
			writeDispatchError(w, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func cancelHandler(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := session(w, r, opts)
		if !ok {
			return
		}
		if err := d.Cancel(); err != nil {
			writeDispatchError(w, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// applyPostedValues traduce un POST html al modelo "solo campos tocados":
// un control vacío deja el campo sin tocar (o lo limpia si ya tenía valor).
func applyPostedValues(d *consults.Dispatcher, posted map[string][]string) error {
	snap := d.Snapshot()
	if snap.Form == nil {
		return consults.ErrNoActiveForm
	}

	for _, fs := range snap.Form.Fields() {
		raw := posted[fs.Name]
		had := snap.Values.Has(fs.Name)

		var err error
		switch fs.Kind {
		case forms.KindCheckbox:
			switch {
			case len(raw) > 0:
				err = d.Change(fs.Name, true)
			case had:
				err = d.Change(fs.Name, false)
			}
		case forms.KindMultiChoice:
			picked := nonEmpty(raw)
			switch {
			case len(picked) > 0:
				err = d.Change(fs.Name, picked)
			case had:
				err = d.Clear(fs.Name)
			}
		default:
			v := ""
			if len(raw) > 0 {
				v = raw[0]
			}
			switch {
			case strings.TrimSpace(v) != "":
				err = d.Change(fs.Name, v)
			case had:
				err = d.Clear(fs.Name)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// stale: el formulario ya no admite el POST (doble envío, reset en curso, cancelado).
func stale(err error) bool {
	return errors.Is(err, consults.ErrNoActiveForm) ||
		errors.Is(err, consults.ErrSubmissionInFlight) ||
		errors.Is(err, consults.ErrSubmissionAbandoned)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, consults.ErrUnknownField), errors.Is(err, consults.ErrInvalidValue):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, consults.ErrUnsupportedSpecies):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, consults.ErrNoActiveForm),
		errors.Is(err, consults.ErrSubmissionInFlight),
		errors.Is(err, consults.ErrCatalogLoading),
		errors.Is(err, consults.ErrDispatcherClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
