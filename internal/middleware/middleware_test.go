package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mem "vet-consult-intake/internal/adapters/storage/memory"
	"vet-consult-intake/internal/domain/veterinarians"
	"vet-consult-intake/internal/ports/auth"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token == "good" {
		return auth.Claims{UserID: "user-1"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

func identityServer(verifier auth.AuthVerifier) (http.Handler, *veterinarians.Identity) {
	repo := mem.NewVeterinarianRepo(veterinarians.Veterinarian{ID: "vet-1", UserID: "user-1"})
	svc := veterinarians.NewService(repo, "demo-vet-id")

	var seen veterinarians.Identity
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetIdentity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthContext(verifier)(Identity(svc, nil)(final)), &seen
}

func TestIdentity_DevMode(t *testing.T) {
	h, seen := identityServer(nil)

	cases := []struct {
		header string
		want   veterinarians.Identity
	}{
		{"", veterinarians.Identity{VeterinarianID: "demo-vet-id", Source: veterinarians.SourceDefault}},
		{"user-1", veterinarians.Identity{VeterinarianID: "vet-1", UserID: "user-1", Source: veterinarians.SourceDebug}},
		{"user-9", veterinarians.Identity{VeterinarianID: "user-9", UserID: "user-9", Source: veterinarians.SourceDebug}},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(DebugUserHeader, tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("header %q: expected 204, got %d", tc.header, rec.Code)
		}
		if *seen != tc.want {
			t.Fatalf("header %q: got %#v, want %#v", tc.header, *seen, tc.want)
		}
	}
}

func TestIdentity_VerifierMode(t *testing.T) {
	h, seen := identityServer(fakeVerifier{})

	// con verifier, el header de debug se ignora
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "user-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen.Source != veterinarians.SourceDefault {
		t.Fatalf("debug header must be ignored with a verifier, got %#v", *seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen.VeterinarianID != "vet-1" || seen.Source != veterinarians.SourceToken {
		t.Fatalf("expected token identity, got %d %#v", rec.Code, *seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestRecover_Returns500(t *testing.T) {
	h := Recover(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}
