package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/registry"
)

// WebhookInfo is the subset of getWebhookInfo the exporter reads.
// A nil field was absent from the response or had the wrong JSON type.
type WebhookInfo struct {
	URL                  *string
	HasCustomCertificate *bool
	PendingUpdateCount   *float64
	MaxConnections       *float64
	LastErrorDate        *float64
}

// Result is the outcome of one fetch for one bot.
type Result struct {
	Bot       string
	FetchedAt time.Time

	// Status is the HTTP status code, or 0 if no response was received.
	Status int

	// Info is set when Err is nil.
	Info *WebhookInfo

	// Err is a *FetchError when the fetch failed.
	Err error
}

// OK reports whether the fetch produced a usable body.
func (r Result) OK() bool {
	return r.Err == nil && r.Info != nil
}

// FetchError describes a failed fetch. Its message never contains the token.
type FetchError struct {
	Bot string
	// Op is the failing step: "build request", "http get", "read body" or "decode".
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("scraper: bot %q: %s: %v", e.Bot, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch failed because a deadline was exceeded.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// redactedError replaces the message of err while keeping it unwrappable.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, token string) error {
	if err == nil || token == "" {
		return err
	}
	msg := err.Error()
	msg = strings.ReplaceAll(msg, url.PathEscape(token), "<redacted>")
	msg = strings.ReplaceAll(msg, token, "<redacted>")
	return &redactedError{msg: msg, err: err}
}

// Fetcher issues getWebhookInfo calls.
type Fetcher struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// New returns a Fetcher with its own HTTP client built from opts.
func New(opts Options) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		baseURL: opts.BaseURL,
		client:  buildHTTPClient(opts),
		now:     time.Now,
	}
}

// NewWithClient returns a Fetcher that uses client as-is.
func NewWithClient(baseURL string, client *http.Client) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
	}
}

func (f *Fetcher) endpoint(token string) string {
	return f.baseURL + "/bot" + url.PathEscape(token) + "/getWebhookInfo"
}

// Fetch performs exactly one GET for e. Any HTTP status is accepted; only a
// transport failure or an undecodable body is an error.
func (f *Fetcher) Fetch(ctx context.Context, e registry.Entity) Result {
	log := loggerFrom(ctx)
	res := Result{Bot: e.Name, FetchedAt: f.now().UTC()}

	fail := func(op string, err error) Result {
		res.Err = &FetchError{Bot: e.Name, Op: op, Err: redact(err, e.Token)}
		log.Warn("scraper: fetch failed", "bot", e.Name, "status", res.Status, "err", res.Err)
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint(e.Token), nil)
	if err != nil {
		return fail("build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fail("http get", err)
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail("read body", err)
	}

	info, err := decodeWebhookInfo(body)
	if err != nil {
		return fail("decode", err)
	}
	res.Info = info

	log.Info("scraper: fetched webhook info", "bot", e.Name, "status", resp.StatusCode)
	return res
}

// decodeWebhookInfo reads the known fields from a JSON object body.
func decodeWebhookInfo(body []byte) (*WebhookInfo, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if fields == nil {
		return nil, errors.New("decode JSON: body is not an object")
	}

	// Bot API responses wrap the payload: {"ok": true, "result": {...}}.
	if raw, ok := fields["result"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(raw, &inner) == nil && inner != nil {
			fields = inner
		}
	}

	return &WebhookInfo{
		URL:                  optional[string](fields, "url"),
		HasCustomCertificate: optional[bool](fields, "has_custom_certificate"),
		PendingUpdateCount:   optional[float64](fields, "pending_update_count"),
		MaxConnections:       optional[float64](fields, "max_connections"),
		LastErrorDate:        optional[float64](fields, "last_error_date"),
	}, nil
}

// optional decodes fields[key] into a T, returning nil if the key is missing,
// null, or holds a value of another JSON type.
func optional[T any](fields map[string]json.RawMessage, key string) *T {
	raw, ok := fields[key]
	if !ok || strings.TrimSpace(string(raw)) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}
