package backend

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/platform/httpclient"
	"vet-consult-intake/internal/platform/logger"
)

const (
	speciesPath  = "/api/species"
	consultsPath = "/api/animal-consults"
)

var ErrNotConfigured = errors.New("backend client not configured")

// Client habla con el API de consultas. Implementa consults.CatalogSource y consults.Submitter.
type Client struct {
	http *httpclient.Client
	log  logger.Logger
}

func New(hc *httpclient.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{http: hc, log: log}
}

// ListSpecies confía en la forma que devuelve el server; solo falla si el body no es JSON.
func (c *Client) ListSpecies(ctx context.Context) ([]species.Descriptor, error) {
	if c == nil || c.http == nil {
		return nil, ErrNotConfigured
	}
	var out []species.Descriptor
	if err := c.http.DoJSON(ctx, http.MethodGet, speciesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConsultation nunca devuelve error: el desenlace va en consults.Result.
func (c *Client) CreateConsultation(ctx context.Context, p consults.Payload) consults.Result {
	if c == nil || c.http == nil {
		return consults.Failure("")
	}

	var body json.RawMessage
	err := c.http.DoJSON(ctx, http.MethodPost, consultsPath, p, &body)
	if err == nil {
		return consults.Success(body)
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		c.log.Warn("create consultation rejected", map[string]any{
			"status":  httpErr.StatusCode,
			"species": p.Species,
		})
		return consults.Failure(cleanMessage(httpErr.Detail()))
	}

	c.log.Error("create consultation failed", map[string]any{
		"error":   err,
		"species": p.Species,
	})
	return consults.Failure("")
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// cleanMessage deja solo texto plano del detail que manda el server.
// El escape para html lo hace el template.
func cleanMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	cleaned := html.UnescapeString(messagePolicy.Sanitize(trimmed))
	return strings.Join(strings.Fields(cleaned), " ")
}
