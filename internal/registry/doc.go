// Package registry holds the set of monitored bots.
//
// Load(blob) parses the JSON object supplied through TG_TOKENS
// ({"botname": "token", ...}) into an immutable Registry. Any problem with the
// blob is reported as a *ConfigError; callers treat that as fatal at startup.
//
// Entities are kept sorted by name so every collection cycle visits them in
// the same order. Tokens are never exposed through String or log output.
package registry
