package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"storefront/internal/config"
	"storefront/internal/upstream"
)

// Client reads entries from a Contentful space through the delivery or
// preview REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  zerolog.Logger
}

type response struct {
	status int
	body   []byte
}

// NewDelivery returns a client for published content, or nil when the space
// or access token is missing.
func NewDelivery(cfg config.CMSConfig, logger zerolog.Logger) *Client {
	return newClient(cfg, cfg.DeliveryURL, cfg.AccessToken, "cms-delivery", logger)
}

// NewPreview returns a client for draft content, or nil when the space or
// preview token is missing.
func NewPreview(cfg config.CMSConfig, logger zerolog.Logger) *Client {
	return newClient(cfg, cfg.PreviewURL, cfg.PreviewToken, "cms-preview", logger)
}

func newClient(cfg config.CMSConfig, host, token, name string, logger zerolog.Logger) *Client {
	if cfg.SpaceID == "" || token == "" {
		return nil
	}
	env := cfg.Environment
	if env == "" {
		env = "master"
	}
	logger = logger.With().Str("component", name).Logger()
	return &Client{
		baseURL: fmt.Sprintf("%s/spaces/%s/environments/%s", strings.TrimRight(host, "/"), url.PathEscape(cfg.SpaceID), url.PathEscape(env)),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: upstream.NewBreaker[response](name, logger),
		logger:  logger,
	}
}

// Query selects entries of one content type.
type Query struct {
	ContentType string
	Limit       int
	Order       string
}

// Entries fetches the entries matching q together with their linked assets.
func (c *Client) Entries(ctx context.Context, q Query) (*Entries, error) {
	params := url.Values{}
	params.Set("content_type", q.ContentType)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	endpoint := c.baseURL + "/entries?" + params.Encode()

	// only transport errors and 5xx count against the breaker
	res, err := c.breaker.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return response{}, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return response{}, fmt.Errorf("contentful status %d", resp.StatusCode)
		}
		return response{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s entries: %w", q.ContentType, err)
	}
	if res.status != http.StatusOK {
		return nil, fmt.Errorf("fetch %s entries: contentful status %d", q.ContentType, res.status)
	}

	var raw entriesResponse
	if err := json.Unmarshal(res.body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s entries: %w", q.ContentType, err)
	}
	return raw.resolve(), nil
}
