package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/upstream"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx answer that is not a 404.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commerce api status %d: %s", e.Status, e.Body)
}

// Client talks to a commercetools-compatible project API.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  zerolog.Logger
}

type response struct {
	status int
	body   []byte
}

// New builds a client for cfg. Without a client id requests are sent
// unauthenticated, which suits local mocks.
func New(cfg config.CommerceConfig, logger zerolog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/oauth/token",
			Scopes:       cfg.Scopes,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = timeout
	}

	logger = logger.With().Str("component", "commerce").Logger()
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/") + "/" + url.PathEscape(cfg.ProjectKey),
		http:    httpClient,
		breaker: upstream.NewBreaker[response]("commerce", logger),
		logger:  logger,
	}
}

// do sends one request. Transport errors and 5xx answers count against the
// breaker; 4xx answers do not.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	res, err := c.breaker.Execute(func() (response, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

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
			return response{}, &StatusError{Status: resp.StatusCode, Body: truncate(data)}
		}
		return response{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("commerce request failed")
		return err
	}

	switch {
	case res.status == http.StatusNotFound:
		return domain.ErrNotFound
	case res.status >= http.StatusBadRequest:
		return &StatusError{Status: res.status, Body: truncate(res.body)}
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}

// predicateLiteral escapes s for use inside a double-quoted query predicate.
func predicateLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
