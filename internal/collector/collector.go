package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/compute"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/registry"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

// Exposed metric names.
const (
	MetricScrapeSuccess      = "tg_webhooks_scrape_success"
	MetricMaxConnections     = "tg_webhooks_max_connections"
	MetricLastErrorDate      = "tg_webhooks_last_error_date"
	MetricPendingUpdateCount = "tg_webhooks_pending_update_count"
	MetricCustomCertificate  = "tg_webhooks_custom_certificate"
	MetricWebhookEnabled     = "tg_webhooks_enabled"
)

const botLabel = "bot"

// family ties an exposed gauge to the Row field that feeds it.
type family struct {
	name  string
	help  string
	value func(compute.Row) *float64
}

// families is listed in exposition order.
var families = []family{
	{MetricScrapeSuccess, "failure of the last scrape of the telegram API",
		func(r compute.Row) *float64 { return &r.ScrapeSuccess }},
	{MetricMaxConnections, "max number of connections for the webhook",
		func(r compute.Row) *float64 { return r.MaxConnections }},
	{MetricLastErrorDate, "Unix time for the most recent error that happened when " +
		"trying to deliver an update via webhook",
		func(r compute.Row) *float64 { return r.LastErrorDate }},
	{MetricPendingUpdateCount, "Number of updates awaiting delivery",
		func(r compute.Row) *float64 { return r.PendingUpdateCount }},
	{MetricCustomCertificate, "1 if a custom certificate is set",
		func(r compute.Row) *float64 { return r.CustomCertificate }},
	{MetricWebhookEnabled, "1 if webhooks are enabled",
		func(r compute.Row) *float64 { return r.WebhookEnabled }},
}

// Fetcher fetches webhook status for one bot. *scraper.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, e registry.Entity) scraper.Result
}

// Sample is one bot's value within a series.
type Sample struct {
	Bot   string
	Value float64
}

// Snapshot is the output of one collection cycle.
type Snapshot struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	// Series maps a metric name to its samples, in registry order.
	Series map[string][]Sample

	// Failed lists the bots whose fetch failed.
	Failed []string
}

// Value returns the sample for bot in the named series.
func (s *Snapshot) Value(metric, bot string) (float64, bool) {
	for _, smp := range s.Series[metric] {
		if smp.Bot == bot {
			return smp.Value, true
		}
	}
	return 0, false
}

// Collector orchestrates registry → fetch → map for every bot.
type Collector struct {
	reg     *registry.Registry
	fetcher Fetcher
	logger  *slog.Logger
	descs   map[string]*prometheus.Desc
	now     func() time.Time
}

// New returns a Collector over reg using f for every fetch.
// A nil logger falls back to slog.Default().
func New(reg *registry.Registry, f Fetcher, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	descs := make(map[string]*prometheus.Desc, len(families))
	for _, fam := range families {
		descs[fam.name] = prometheus.NewDesc(fam.name, fam.help, []string{botLabel}, nil)
	}
	return &Collector{
		reg:     reg,
		fetcher: f,
		logger:  logger,
		descs:   descs,
		now:     time.Now,
	}
}

// Snapshot runs one collection cycle. It always returns a complete snapshot:
// every bot has a scrape_success sample whatever the upstream did.
func (c *Collector) Snapshot(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		StartedAt: c.now(),
		Series:    make(map[string][]Sample, len(families)),
	}
	log := c.logger.With("scrape_id", snap.ID)
	ctx = scraper.WithLogger(ctx, log)

	for _, e := range c.reg.Entities() {
		row := compute.Map(e.Name, c.fetchOne(ctx, log, e))
		if row.ScrapeSuccess == 0 {
			snap.Failed = append(snap.Failed, e.Name)
		}
		for _, fam := range families {
			if v := fam.value(row); v != nil {
				snap.Series[fam.name] = append(snap.Series[fam.name], Sample{Bot: e.Name, Value: *v})
			}
		}
	}

	snap.Duration = c.now().Sub(snap.StartedAt)
	log.Debug("collector: scrape complete",
		"bots", c.reg.Len(),
		"failed", len(snap.Failed),
		"duration", snap.Duration,
	)
	return snap
}

// fetchOne isolates a single bot: a panicking fetcher becomes a failed result.
func (c *Collector) fetchOne(ctx context.Context, log *slog.Logger, e registry.Entity) (res scraper.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("collector: fetch panicked", "bot", e.Name, "panic", fmt.Sprint(r))
			res = scraper.Result{
				Bot: e.Name,
				Err: &scraper.FetchError{Bot: e.Name, Op: "http get", Err: fmt.Errorf("panic: %v", r)},
			}
		}
	}()
	return c.fetcher.Fetch(ctx, e)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, fam := range families {
		ch <- c.descs[fam.name]
	}
}

// Collect implements prometheus.Collector. The scrape request is not
// propagated; each fetch is bounded by the HTTP client timeout instead.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Snapshot(context.Background())
	for _, fam := range families {
		desc := c.descs[fam.name]
		for _, smp := range snap.Series[fam.name] {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, smp.Value, smp.Bot)
		}
	}
}
