package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Telegram Bot API.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout bounds a single getWebhookInfo call.
	DefaultTimeout = 10 * time.Second

	DefaultUserAgent = "tgwebhooks-exporter"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Options configures a Fetcher built by New.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// headerRoundTripper sets fixed headers on every outgoing request.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs the client shared by every fetch. The client
// timeout is the only bound on a fetch; scrapes do not cancel it.
func buildHTTPClient(opts Options) *http.Client {
	return &http.Client{
		Transport: &headerRoundTripper{
			base:      http.DefaultTransport.(*http.Transport).Clone(),
			userAgent: opts.UserAgent,
		},
		Timeout: opts.Timeout,
	}
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return o
}

type loggerKey struct{}

// WithLogger returns a context carrying l. Fetch logs through it, which lets
// the collector attach per-scrape fields.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
