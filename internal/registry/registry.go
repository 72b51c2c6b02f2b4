package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultEnv is the environment variable the token map is read from.
const DefaultEnv = "TG_TOKENS"

// ConfigError reports an unusable token configuration.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "registry: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + ` (format: {"botname": "token"})`
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Entity is one monitored bot.
type Entity struct {
	// Name is unique and used as the "bot" label value.
	Name string

	// Token is the bot API credential. It is opaque and must not be logged.
	Token string
}

// String omits the token so an Entity is safe to pass to a logger.
func (e Entity) String() string {
	return e.Name
}

// Registry is the immutable set of bots loaded at startup.
type Registry struct {
	entities []Entity
}

// Load parses blob as a JSON object mapping bot name to token.
func Load(blob string) (*Registry, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, &ConfigError{Reason: "no tokens given"}
	}

	var tokens map[string]string
	if err := json.Unmarshal([]byte(blob), &tokens); err != nil {
		return nil, &ConfigError{Reason: "invalid tokens", Err: err}
	}
	// "null" unmarshals without error into a nil map.
	if tokens == nil {
		return nil, &ConfigError{Reason: "tokens must be a JSON object"}
	}

	entities := make([]Entity, 0, len(tokens))
	for name, token := range tokens {
		if name == "" {
			return nil, &ConfigError{Reason: "bot name must not be empty"}
		}
		entities = append(entities, Entity{Name: name, Token: token})
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })

	return &Registry{entities: entities}, nil
}

// FromEnv loads the registry from the environment variable named env.
func FromEnv(env string) (*Registry, error) {
	r, err := Load(os.Getenv(env))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env, err)
	}
	return r, nil
}

// Entities returns the bots in name order. The returned slice is a copy.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Names returns the bot names in iteration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entities))
	for i, e := range r.entities {
		out[i] = e.Name
	}
	return out
}

// Len returns the number of configured bots.
func (r *Registry) Len() int {
	return len(r.entities)
}
