package consults

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vet-consult-intake/internal/platform/logger"
)

const DefaultSessionTTL = 30 * time.Minute

type SessionsOptions struct {
	// NewDispatcher arma un dispatcher para el veterinario dado. Requerido.
	NewDispatcher func(vetID string) (*Dispatcher, error)

	TTL    time.Duration
	Now    func() time.Time
	NewID  func() string
	Logger logger.Logger
}

type session struct {
	d        *Dispatcher
	vetID    string
	lastSeen time.Time
}

// Sessions mantiene un dispatcher por sesión (navegador o cliente API).
// Solo memoria: nada se persiste.
type Sessions struct {
	newDispatcher func(string) (*Dispatcher, error)
	ttl           time.Duration
	now           func() time.Time
	newID         func() string
	log           logger.Logger

	mu    sync.Mutex
	items map[string]*session
}

func NewSessions(opts SessionsOptions) *Sessions {
	s := &Sessions{
		newDispatcher: opts.NewDispatcher,
		ttl:           opts.TTL,
		now:           opts.Now,
		newID:         opts.NewID,
		log:           opts.Logger,
		items:         make(map[string]*session),
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Get devuelve el dispatcher de la sesión si existe, no expiró y pertenece a vetID.
func (s *Sessions) Get(id, vetID string) (*Dispatcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.vetID != vetID || s.expiredLocked(it) {
		return nil, ErrSessionNotFound
	}
	it.lastSeen = s.now()
	return it.d, nil
}

// Open devuelve la sesión id si sirve; si no, crea una nueva (id nuevo) y
// carga su catálogo de especies. created indica si hubo que crearla.
func (s *Sessions) Open(ctx context.Context, id, vetID string) (sid string, d *Dispatcher, created bool, err error) {
	if strings.TrimSpace(vetID) == "" {
		return "", nil, false, ErrInvalidInput
	}
	if id != "" {
		if d, err := s.Get(id, vetID); err == nil {
			return id, d, false, nil
		}
	}
	if s.newDispatcher == nil {
		return "", nil, false, ErrInvalidInput
	}

	d, err = s.newDispatcher(vetID)
	if err != nil {
		return "", nil, false, err
	}
	d.LoadSpeciesCatalog(ctx)

	sid = s.newID()

	s.mu.Lock()
	s.items[sid] = &session{d: d, vetID: vetID, lastSeen: s.now()}
	n := len(s.items)
	s.mu.Unlock()

	s.log.Debug("session opened", map[string]any{"session_id": sid, "veterinarian_id": vetID, "sessions": n})
	return sid, d, true, nil
}

func (s *Sessions) expiredLocked(it *session) bool {
	return s.now().Sub(it.lastSeen) > s.ttl
}

// Sweep cierra y elimina las sesiones inactivas. Devuelve cuántas quitó.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	var expired []*Dispatcher
	for id, it := range s.items {
		if s.expiredLocked(it) {
			expired = append(expired, it.d)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, d := range expired {
		d.Close()
	}
	if len(expired) > 0 {
		s.log.Info("expired sessions closed", map[string]any{"count": len(expired)})
	}
	return len(expired)
}

// Run barre cada interval hasta que ctx se cancele.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close cierra todos los dispatchers (shutdown).
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*session)
	s.mu.Unlock()

	for _, it := range items {
		it.d.Close()
	}
}
