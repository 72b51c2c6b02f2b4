// Package config loads the exporter settings file (config.yaml).
//
// The settings file is optional and holds only non-secret knobs: listen
// address, metrics path, Bot API base URL, request timeout, user agent,
// log level, the name of the token environment variable and whether Go
// runtime metrics are exposed. Bot tokens themselves are never read from
// this file; see package registry.
//
// Load(path) applies defaults (":8000", "/metrics", 10s timeout, TG_TOKENS),
// then validates. Load("") returns the defaults.
//
// Watch(ctx, path, onChange) uses fsnotify to reload the file on write or
// create events. A reload that fails to parse or validate is logged and the
// previous settings stay in effect.
package config
