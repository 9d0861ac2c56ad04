// Package banner augments the static page description with the name of the
// local model, fetched once at startup.
package banner

import (
	"context"
	"html/template"
	"log/slog"
	"sync"

	"github.com/shahar-caura/plantid/internal/provider"
)

// Banner holds the page description. It is safe for concurrent use.
type Banner struct {
	mu          sync.RWMutex
	description string
	model       string
	logger      *slog.Logger
}

// New returns a Banner showing description until a model name is known.
func New(description string, logger *slog.Logger) *Banner {
	return &Banner{description: description, logger: logger}
}

// Start runs Load on its own goroutine. The returned channel is closed when
// the fetch has finished, successfully or not.
func (b *Banner) Start(ctx context.Context, source provider.ModelInfoSource) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Load(ctx, source)
	}()
	return done
}

// Load fetches model metadata. Failures leave the description unchanged.
func (b *Banner) Load(ctx context.Context, source provider.ModelInfoSource) {
	info, err := source.ModelInfo(ctx)
	if err != nil {
		b.logger.Debug("model info unavailable", "error", err)
		return
	}

	b.mu.Lock()
	b.model = info.Model
	b.mu.Unlock()
	b.logger.Debug("model info loaded", "model", info.Model)
}

// Model returns the loaded model name, or "".
func (b *Banner) Model() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// Text returns the description as plain text.
func (b *Banner) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.model == "" {
		return b.description
	}
	return b.description + " Using " + b.model + " for initial analysis."
}

// HTML returns the description with the model name in bold.
func (b *Banner) HTML() template.HTML {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := template.HTMLEscapeString(b.description)
	if b.model != "" {
		out += " Using <strong>" + template.HTMLEscapeString(b.model) + "</strong> for initial analysis."
	}
	return template.HTML(out)
}
