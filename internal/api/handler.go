package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the handler returned by New.
type Options struct {
	// Gatherer is scraped on every request to MetricsPath.
	Gatherer prometheus.Gatherer

	MetricsPath string

	// BotNames is reported by /healthz.
	BotNames []string
}

// Handler routes the landing page, health check and metrics endpoint.
type Handler struct {
	opts Options
	mux  *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(opts Options) http.Handler {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.BotNames == nil {
		opts.BotNames = []string{}
	}
	h := &Handler{opts: opts, mux: http.NewServeMux()}

	h.mux.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{
		ErrorLog:      promLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.HandleFunc("/", h.index)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

var indexTmpl = template.Must(template.New("index").Parse(`<html>
<head><title>Telegram Webhooks Exporter</title></head>
<body>
<h1>Telegram Webhooks Exporter</h1>
<p><a href="{{.}}">Metrics</a></p>
</body>
</html>
`))

// index serves GET /, a landing page. Unknown paths are 404.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	indexTmpl.Execute(w, h.opts.MetricsPath) //nolint:errcheck
}

// health serves GET /healthz: process liveness and the configured bots.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Bots:     len(h.opts.BotNames),
		BotNames: h.opts.BotNames,
	})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// promLogger routes promhttp encoding errors to slog.
type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	slog.Error("api: metrics handler error", "err", fmt.Sprint(v...))
}
