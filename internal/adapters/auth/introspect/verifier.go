package introspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vet-consult-intake/internal/platform/httpclient"
	"vet-consult-intake/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("introspection verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrUnauthorized  = errors.New("token rejected by identity service")
	ErrUpstream      = errors.New("identity service error")
)

const DefaultAPIKeyHeader = "X-Api-Key"

// Config del servicio de identidad que valida tokens opacos.
type Config struct {
	// URL completa del endpoint (POST {"token": "..."}).
	URL    string
	APIKey string

	// Si está vacío, se usa X-Api-Key.
	APIKeyHeader string
	Timeout      time.Duration
}

// Verifier implementa auth.AuthVerifier delegando en un servicio de identidad remoto.
type Verifier struct {
	url  string
	http *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	u := strings.TrimSpace(cfg.URL)
	key := strings.TrimSpace(cfg.APIKey)
	if u == "" || key == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = DefaultAPIKeyHeader
	}

	hc, err := httpclient.NewWithTransport("", cfg.Timeout, &apiKeyTransport{
		header: h,
		key:    key,
		next:   http.DefaultTransport,
	})
	if err != nil {
		return nil, err
	}
	return &Verifier{url: u, http: hc}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ClinicID string `json:"clinic_id"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out verifyResponse
	err := v.http.DoJSON(ctx, http.MethodPost, v.url, verifyRequest{Token: token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	userID := strings.TrimSpace(out.UserID)
	if userID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return auth.Claims{
		UserID:   userID,
		Email:    strings.TrimSpace(out.Email),
		ClinicID: strings.TrimSpace(out.ClinicID),
	}, nil
}

// apiKeyTransport agrega la API key del servicio a cada request.
type apiKeyTransport struct {
	header string
	key    string
	next   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(t.header, t.key)
	return t.next.RoundTrip(r)
}
