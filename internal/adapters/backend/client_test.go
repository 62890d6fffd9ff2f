package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/forms"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/platform/httpclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	hc, err := httpclient.New(ts.URL, 0)
	require.NoError(t, err)
	return New(hc, nil)
}

func TestListSpecies_DecodesServerList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/species", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"perro","name":"Perro"},{"id":"aves","name":"Aves"}]`))
	})

	got, err := c.ListSpecies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []species.Descriptor{{ID: "perro", Name: "Perro"}, {ID: "aves", Name: "Aves"}}, got)
}

func TestListSpecies_ErrorsOnNon2xxAndMalformedBody(t *testing.T) {
	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := down.ListSpecies(context.Background())
	require.Error(t, err)

	garbage := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"species":`))
	})
	_, err = garbage.ListSpecies(context.Background())
	require.ErrorIs(t, err, httpclient.ErrInvalidJSON)
}

func TestCreateConsultation_SendsPayloadAndReturnsBody(t *testing.T) {
	var received map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/animal-consults", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Consulta creada","id":"c-9","consultation":{}}`))
	})

	res := c.CreateConsultation(context.Background(), consults.Payload{
		VeterinarianID: "demo-vet-id",
		Species:        "tortuga",
		ConsultationData: forms.Values{
			"nombre_paciente": "Manuelita",
			"secrecion_tipo":  []string{"clara"},
		},
	})

	require.True(t, res.OK)
	assert.JSONEq(t, `{"message":"Consulta creada","id":"c-9","consultation":{}}`, string(res.Body))
	assert.Equal(t, "demo-vet-id", received["veterinarian_id"])
	assert.Equal(t, "tortuga", received["species"])
	assert.Equal(t, map[string]any{
		"nombre_paciente": "Manuelita",
		"secrecion_tipo":  []any{"clara"},
	}, received["consultation_data"])
}

func TestCreateConsultation_FailureMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", http.StatusNotFound, `{"detail":"Veterinarian not found"}`, "Veterinarian not found"},
		{"markup stripped", http.StatusBadRequest, `{"detail":"<b>Especie</b> inválida<script>alert(1)</script>"}`, "Especie inválida"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, consults.GenericFailureMessage},
		{"no body", http.StatusInternalServerError, ``, consults.GenericFailureMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			res := c.CreateConsultation(context.Background(), consults.Payload{VeterinarianID: "v", Species: "perro"})
			assert.False(t, res.OK)
			assert.Equal(t, tc.want, res.Message)
		})
	}
}

func TestCreateConsultation_NetworkError_UsesGenericMessage(t *testing.T) {
	hc, err := httpclient.New("http://127.0.0.1:1", 0)
	require.NoError(t, err)

	res := New(hc, nil).CreateConsultation(context.Background(), consults.Payload{VeterinarianID: "v", Species: "perro"})
	assert.False(t, res.OK)
	assert.Equal(t, consults.GenericFailureMessage, res.Message)
}
