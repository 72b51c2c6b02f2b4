// Package scraper fetches webhook status for one bot from the Telegram Bot
// API and returns a Result describing what came back.
//
// Fetch never returns an error. A transport failure, a timeout, or a body
// that is not a JSON object is carried in Result.Err as a *FetchError so the
// collector can record scrape_success=0 for that bot and keep going.
//
// Decoding is tolerant: every field of WebhookInfo is optional, and a field
// whose JSON type does not match is treated as absent. The Bot API envelope
// {"ok": true, "result": {...}} is unwrapped when present.
//
// Bot tokens are part of the request path. They are stripped from every error
// string and never logged.
package scraper
