// Package compute turns a scraper.Result into the per-bot metric row.
//
// Map is pure and never fails. A successful fetch yields all six values with
// field-level defaults; a failed fetch yields only ScrapeSuccess=0 and leaves
// the other five unset so the collector omits them.
//
// Defaults are asymmetric: a missing has_custom_certificate or
// pending_update_count becomes NaN ("never reported"), while a missing
// max_connections or last_error_date becomes 0.
package compute
