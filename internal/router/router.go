package router

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-consult-intake/docs"
	"vet-consult-intake/internal/adapters/backend"
	mem "vet-consult-intake/internal/adapters/storage/memory"
	pg "vet-consult-intake/internal/adapters/storage/postgres"
	"vet-consult-intake/internal/api"
	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/domain/veterinarians"
	"vet-consult-intake/internal/middleware"
	"vet-consult-intake/internal/platform/logger"
	"vet-consult-intake/internal/ports/auth"
	"vet-consult-intake/internal/web"
)

var ErrSessionsRequired = errors.New("router: sessions are required")

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, las identidades salen de Postgres. Si no, in-memory.
	DB *sql.DB

	Sessions *consults.Sessions
	Registry *species.Registry
	Logger   logger.Logger

	DefaultVeterinarianID string
	ResetDelay            time.Duration
	SecureCookie          bool
}

func NewRouter(opts Options) (http.Handler, error) {
	if opts.Sessions == nil {
		return nil, ErrSessionsRequired
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Registry == nil {
		reg, err := species.NewRegistry()
		if err != nil {
			return nil, err
		}
		opts.Registry = reg
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	var vetRepo veterinarians.Repository
	if opts.DB != nil {
		vetRepo = pg.NewVeterinariansRepo(opts.DB)
	} else {
		vetRepo = mem.NewVeterinarianRepo()
	}
	vetSvc := veterinarians.NewService(vetRepo, opts.DefaultVeterinarianID)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(opts.Logger))
	r.Use(middleware.RequestLog(opts.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthContext(opts.AuthVerifier))
		r.Use(middleware.Identity(vetSvc, opts.Logger))

		web.RegisterRoutes(r, web.Options{
			Sessions:     opts.Sessions,
			Renderer:     renderer,
			Logger:       opts.Logger,
			ResetDelay:   opts.ResetDelay,
			SecureCookie: opts.SecureCookie,
		})
		api.RegisterRoutes(r, api.Options{
			Sessions: opts.Sessions,
			Registry: opts.Registry,
			Logger:   opts.Logger,
		})
	})

	return r, nil
}

// SessionsOptions arma el almacén de sesiones con un dispatcher por sesión
// que habla con el backend de consultas.
type SessionsOptions struct {
	Backend    *backend.Client
	Registry   *species.Registry
	Logger     logger.Logger
	ResetDelay time.Duration
	TTL        time.Duration
	Clock      consults.Clock
}

func NewSessions(opts SessionsOptions) *consults.Sessions {
	return consults.NewSessions(consults.SessionsOptions{
		NewDispatcher: func(vetID string) (*consults.Dispatcher, error) {
			return consults.New(consults.Options{
				Catalog:        opts.Backend,
				Forms:          opts.Registry,
				Submitter:      opts.Backend,
				VeterinarianID: vetID,
				ResetDelay:     opts.ResetDelay,
				Clock:          opts.Clock,
				Logger:         opts.Logger,
			})
		},
		TTL:    opts.TTL,
		Logger: opts.Logger,
	})
}
