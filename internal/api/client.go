// Package api is the client for the tutoring platform's REST API.
package api

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
)

const maxResponseBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	AuthScheme string // "Token" unless set
	Timeout    time.Duration
	Tokens     *TokenStore // may be nil for anonymous use
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the platform. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	scheme string
	tokens *TokenStore
	http   *http.Client
	logger zerolog.Logger
}

// New returns a Client for opts.BaseURL. A missing trailing slash is added
// so relative endpoint paths resolve under it.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	scheme := opts.AuthScheme
	if scheme == "" {
		scheme = "Token"
	}

	return &Client{
		base:   base,
		scheme: scheme,
		tokens: opts.Tokens,
		http:   hc,
		logger: opts.Logger.With().Str("component", "api").Logger(),
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Authenticated reports whether a usable token is available.
func (c *Client) Authenticated() bool {
	if c.tokens == nil {
		return false
	}
	tok, err := c.tokens.Token()
	return err == nil && tok != ""
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON sends in as the JSON body (nil for none) and decodes a 2xx
// response into out (nil to discard).
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			c.logger.Warn().Err(err).Msg("token unavailable, sending anonymous request")
		} else if tok != "" {
			req.Header.Set("Authorization", c.scheme+" "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("request failed")
		return classifyTransportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				c.logger.Warn().Err(err).Msg("clear rejected token")
			}
		}
		return newStatusError(op, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// decodeList accepts both a paginated {"results": [...]} body and a bare
// array.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) getList(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, op, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
