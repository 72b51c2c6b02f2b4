package api_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/api"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/collector"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/registry"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

// --- test helpers -----------------------------------------------------------

type stubFetcher map[string]*scraper.WebhookInfo

func (s stubFetcher) Fetch(_ context.Context, e registry.Entity) scraper.Result {
	if info, ok := s[e.Name]; ok {
		return scraper.Result{Bot: e.Name, Status: http.StatusOK, Info: info}
	}
	return scraper.Result{
		Bot: e.Name,
		Err: &scraper.FetchError{Bot: e.Name, Op: "http get", Err: context.DeadlineExceeded},
	}
}

func newHandler(t *testing.T, blob string, f collector.Fetcher) http.Handler {
	t.Helper()
	reg, err := registry.Load(blob)
	require.NoError(t, err)

	promReg := prometheus.NewRegistry()
	require.NoError(t, promReg.Register(collector.New(reg, f, nil)))

	return api.New(api.Options{
		Gatherer:    promReg,
		MetricsPath: "/metrics",
		BotNames:    reg.Names(),
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func scrape(t *testing.T, h http.Handler) map[string]*dto.MetricFamily {
	t.Helper()
	rr := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	require.NoError(t, err)
	return mfs
}

func sample(mf *dto.MetricFamily, bot string) (float64, bool) {
	if mf == nil {
		return 0, false
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "bot" && lp.GetValue() == bot {
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

// --- metrics ----------------------------------------------------------------

func TestMetrics_AliceAndBob(t *testing.T) {
	h := newHandler(t, `{"alice": "TOKEN1", "bob": "TOKEN2"}`, stubFetcher{
		"alice": {URL: str("https://x"), MaxConnections: num(40)},
	})
	mfs := scrape(t, h)

	v, found := sample(mfs["tg_webhooks_scrape_success"], "alice")
	require.True(t, found)
	assert.Equal(t, 1.0, v)

	v, found = sample(mfs["tg_webhooks_scrape_success"], "bob")
	require.True(t, found)
	assert.Equal(t, 0.0, v)

	v, _ = sample(mfs["tg_webhooks_enabled"], "alice")
	assert.Equal(t, 1.0, v)

	v, _ = sample(mfs["tg_webhooks_max_connections"], "alice")
	assert.Equal(t, 40.0, v)

	v, _ = sample(mfs["tg_webhooks_pending_update_count"], "alice")
	assert.True(t, math.IsNaN(v))

	_, found = sample(mfs["tg_webhooks_enabled"], "bob")
	assert.False(t, found, "bob must not have a tg_webhooks_enabled sample")
}

func TestMetrics_AllFetchesFailStillServes(t *testing.T) {
	h := newHandler(t, `{"alice": "TOKEN1", "bob": "TOKEN2"}`, stubFetcher{})
	mfs := scrape(t, h)

	require.Contains(t, mfs, "tg_webhooks_scrape_success")
	assert.Len(t, mfs["tg_webhooks_scrape_success"].GetMetric(), 2)
	assert.NotContains(t, mfs, "tg_webhooks_enabled")
}

func TestMetrics_FreshSnapshotPerScrape(t *testing.T) {
	f := stubFetcher{"alice": {MaxConnections: num(40)}}
	h := newHandler(t, `{"alice": "TOKEN1"}`, f)

	v, _ := sample(scrape(t, h)["tg_webhooks_max_connections"], "alice")
	assert.Equal(t, 40.0, v)

	f["alice"] = &scraper.WebhookInfo{MaxConnections: num(100)}
	v, _ = sample(scrape(t, h)["tg_webhooks_max_connections"], "alice")
	assert.Equal(t, 100.0, v)
}

// --- health & index ---------------------------------------------------------

func TestHealth(t *testing.T) {
	h := newHandler(t, `{"alice": "TOKEN1", "bob": "TOKEN2"}`, stubFetcher{})
	rr := get(t, h, "/healthz")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp api.HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Bots)
	assert.Equal(t, []string{"alice", "bob"}, resp.BotNames)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	h := newHandler(t, `{}`, stubFetcher{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth_DoesNotLeakTokens(t *testing.T) {
	h := newHandler(t, `{"alice": "TOKEN1"}`, stubFetcher{})
	rr := get(t, h, "/healthz")
	assert.NotContains(t, rr.Body.String(), "TOKEN1")
}

func TestIndex(t *testing.T) {
	h := newHandler(t, `{}`, stubFetcher{})
	rr := get(t, h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `href="/metrics"`), rr.Body.String())
}

func TestIndex_UnknownPath(t *testing.T) {
	h := newHandler(t, `{}`, stubFetcher{})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}
