package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-consult-intake/internal/ports/auth"
)

func identityService(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(DefaultAPIKeyHeader) != "k-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		var req verifyRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch req.Token {
		case "good":
			_, _ = w.Write([]byte(`{"user_id":" user-1 ","email":"vet@clinic.test","clinic_id":"c-9"}`))
		case "no-user":
			_, _ = w.Write([]byte(`{"email":"x@y"}`))
		case "boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestVerify(t *testing.T) {
	ts := identityService(t)
	v, err := NewVerifier(Config{URL: ts.URL + "/v1/tokens/verify", APIKey: "k-1", Timeout: time.Second})
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", Email: "vet@clinic.test", ClinicID: "c-9"}, claims)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(context.Background(), "boom")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(context.Background(), "no-user")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerify_WrongAPIKeyIsUnauthorized(t *testing.T) {
	ts := identityService(t)
	v, err := NewVerifier(Config{URL: ts.URL, APIKey: "other"})
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "good")
	assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
}

func TestNewVerifier_RequiresURLAndKey(t *testing.T) {
	_, err := NewVerifier(Config{URL: "http://id.local"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier(Config{APIKey: "k"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
