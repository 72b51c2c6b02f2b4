package compute

import (
	"math"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

// Row holds one bot's values for a single collection cycle.
// The pointer fields are nil when the fetch failed and the bot must be left
// out of that series.
type Row struct {
	Bot string

	ScrapeSuccess float64

	WebhookEnabled     *float64
	CustomCertificate  *float64
	PendingUpdateCount *float64
	MaxConnections     *float64
	LastErrorDate      *float64
}

// Complete reports whether every series has a value for this bot.
func (r Row) Complete() bool {
	return r.WebhookEnabled != nil && r.CustomCertificate != nil &&
		r.PendingUpdateCount != nil && r.MaxConnections != nil && r.LastErrorDate != nil
}

// Map derives the metric row for bot from res.
func Map(bot string, res scraper.Result) Row {
	row := Row{Bot: bot}
	if !res.OK() {
		return row
	}
	info := res.Info

	row.ScrapeSuccess = 1
	row.WebhookEnabled = value(boolValue(info.URL != nil && *info.URL != ""))
	row.CustomCertificate = value(orDefault(boolPtr(info.HasCustomCertificate), math.NaN()))
	row.PendingUpdateCount = value(orDefault(info.PendingUpdateCount, math.NaN()))
	row.MaxConnections = value(orDefault(info.MaxConnections, 0))
	row.LastErrorDate = value(orDefault(info.LastErrorDate, 0))
	return row
}

func value(v float64) *float64 { return &v }

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolPtr(b *bool) *float64 {
	if b == nil {
		return nil
	}
	return value(boolValue(*b))
}
