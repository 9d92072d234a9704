// Package failover chains multiple llm.Providers, trying each in order.
package failover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"text2audio/pkg/llm"
)

// Provider wraps multiple LLM providers and handles fallbacks.
type Provider struct {
	providers []llm.Provider
	names     []string
	mu        sync.RWMutex
}

// New creates a new failover Provider.
// providers: ordered list of initialized providers (fallback chain).
// names: names corresponding to the provider list.
func New(providers []llm.Provider, names []string) (*Provider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider required for failover")
	}
	if len(providers) != len(names) {
		return nil, fmt.Errorf("provider count (%d) does not match name count (%d)", len(providers), len(names))
	}

	return &Provider{
		providers: providers,
		names:     names,
	}, nil
}

// GenerateText implements llm.Provider. Providers that do not carry the
// requested profile are skipped; the first success wins.
func (f *Provider) GenerateText(ctx context.Context, name string, prompt llm.Prompt) (string, error) {
	f.mu.RLock()
	providers := f.providers
	names := f.names
	f.mu.RUnlock()

	var lastErr error
	attempted := 0

	for i, p := range providers {
		if !p.HasProfile(name) {
			continue
		}
		attempted++

		res, err := p.GenerateText(ctx, name, prompt)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if i < len(providers)-1 {
			slog.Warn("LLM provider failed, falling back", "provider", names[i], "profile", name, "error", err)
		}
	}

	if attempted == 0 {
		return "", fmt.Errorf("no provider supports profile %q", name)
	}
	return "", fmt.Errorf("all %d provider(s) failed for profile %q: %w", attempted, name, lastErr)
}

// HasProfile implements llm.Provider.
func (f *Provider) HasProfile(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.providers {
		if p.HasProfile(name) {
			return true
		}
	}
	return false
}
