package compute

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

func str(s string) *string   { return &s }
func flag(b bool) *bool      { return &b }
func num(f float64) *float64 { return &f }

func okResult(info scraper.WebhookInfo) scraper.Result {
	return scraper.Result{Bot: "alice", Status: 200, Info: &info}
}

func TestMap_EmptyResponseDefaults(t *testing.T) {
	row := Map("alice", okResult(scraper.WebhookInfo{}))

	require.True(t, row.Complete())
	assert.Equal(t, "alice", row.Bot)
	assert.Equal(t, 1.0, row.ScrapeSuccess)
	assert.Equal(t, 0.0, *row.WebhookEnabled)
	assert.True(t, math.IsNaN(*row.CustomCertificate), "custom_certificate should default to NaN")
	assert.True(t, math.IsNaN(*row.PendingUpdateCount), "pending_update_count should default to NaN")
	assert.Equal(t, 0.0, *row.MaxConnections)
	assert.Equal(t, 0.0, *row.LastErrorDate)
}

func TestMap_FullResponse(t *testing.T) {
	row := Map("alice", okResult(scraper.WebhookInfo{
		URL:                  str("https://x"),
		HasCustomCertificate: flag(true),
		PendingUpdateCount:   num(7),
		MaxConnections:       num(40),
		LastErrorDate:        num(1700000000),
	}))

	require.True(t, row.Complete())
	assert.Equal(t, 1.0, *row.WebhookEnabled)
	assert.Equal(t, 1.0, *row.CustomCertificate)
	assert.Equal(t, 7.0, *row.PendingUpdateCount)
	assert.Equal(t, 40.0, *row.MaxConnections)
	assert.Equal(t, 1700000000.0, *row.LastErrorDate)
}

func TestMap_WebhookEnabled(t *testing.T) {
	cases := []struct {
		name string
		url  *string
		want float64
	}{
		{"absent", nil, 0},
		{"empty string", str(""), 0},
		{"set", str("https://bot.example.com/hook"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := Map("alice", okResult(scraper.WebhookInfo{URL: tc.url}))
			assert.Equal(t, tc.want, *row.WebhookEnabled)
		})
	}
}

func TestMap_ReportedZeroIsNotNaN(t *testing.T) {
	row := Map("alice", okResult(scraper.WebhookInfo{
		HasCustomCertificate: flag(false),
		PendingUpdateCount:   num(0),
	}))
	assert.Equal(t, 0.0, *row.CustomCertificate)
	assert.Equal(t, 0.0, *row.PendingUpdateCount)
}

func TestMap_FailedFetchOmitsSeries(t *testing.T) {
	res := scraper.Result{
		Bot: "bob",
		Err: &scraper.FetchError{Bot: "bob", Op: "http get", Err: errors.New("timeout")},
	}
	row := Map("bob", res)

	assert.Equal(t, "bob", row.Bot)
	assert.Equal(t, 0.0, row.ScrapeSuccess)
	assert.False(t, row.Complete())
	assert.Nil(t, row.WebhookEnabled)
	assert.Nil(t, row.CustomCertificate)
	assert.Nil(t, row.PendingUpdateCount)
	assert.Nil(t, row.MaxConnections)
	assert.Nil(t, row.LastErrorDate)
}

func TestMap_NilInfoIsFailure(t *testing.T) {
	row := Map("alice", scraper.Result{Bot: "alice"})
	assert.Equal(t, 0.0, row.ScrapeSuccess)
	assert.False(t, row.Complete())
}

func TestMap_Deterministic(t *testing.T) {
	res := okResult(scraper.WebhookInfo{URL: str("https://x"), MaxConnections: num(40)})
	a, b := Map("alice", res), Map("alice", res)
	assert.Equal(t, *a.WebhookEnabled, *b.WebhookEnabled)
	assert.Equal(t, *a.MaxConnections, *b.MaxConnections)
	assert.Equal(t, *a.LastErrorDate, *b.LastErrorDate)
	assert.Equal(t, a.ScrapeSuccess, b.ScrapeSuccess)
}
