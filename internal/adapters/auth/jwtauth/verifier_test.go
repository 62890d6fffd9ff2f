package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-consult-intake/internal/ports/auth"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := NewVerifier("s3cret", "intake")
	require.NoError(t, err)

	tok, err := v.Issue(auth.Claims{UserID: "user-7", Email: "vet@clinica.test", ClinicID: "c-1"}, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-7", Email: "vet@clinica.test", ClinicID: "c-1"}, claims)
}

func TestVerifier_Rejects(t *testing.T) {
	v, _ := NewVerifier("s3cret", "intake")
	other, _ := NewVerifier("otro", "intake")
	otherIssuer, _ := NewVerifier("s3cret", "someone-else")

	expired, _ := v.Issue(auth.Claims{UserID: "u"}, time.Minute, time.Now().Add(-time.Hour))
	wrongKey, _ := other.Issue(auth.Claims{UserID: "u"}, time.Hour, time.Now())
	wrongIssuer, _ := otherIssuer.Issue(auth.Claims{UserID: "u"}, time.Hour, time.Now())

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u", Issuer: "intake"}).SignedString([]byte("s3cret"))
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "intake",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))

	cases := map[string]string{
		"empty":        "  ",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"no exp":       noExp,
		"no sub":       noSub,
	}
	for name, tok := range cases {
		_, err := v.Verify(context.Background(), tok)
		assert.Error(t, err, name)
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier(" ", "")
	require.ErrorIs(t, err, ErrNotConfigured)
}
