// Package collector runs the collection cycle behind every scrape.
//
// Snapshot(ctx) visits each bot in the registry once, fetches its webhook
// status, maps it with compute.Map and appends the values to six series.
// A failed fetch for one bot only affects that bot's row: it contributes
// tg_webhooks_scrape_success=0 and is absent from the other five series.
//
// Collector implements prometheus.Collector. It is registered on an explicit
// registry by the caller; nothing is registered globally. Every Collect call
// builds a fresh snapshot and nothing is cached between scrapes.
package collector
