package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fallback tries each provider in order and returns the first success.
// This is provider selection, a single attempt per backend.
type Fallback struct {
	providers []Provider
	log       *logrus.Logger
}

func NewFallback(log *logrus.Logger, providers ...Provider) *Fallback {
	return &Fallback{providers: providers, log: log}
}

func (f *Fallback) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

func (f *Fallback) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(f.providers) == 0 {
		return "", errors.New("llm: no provider configured")
	}
	var errs []error
	for _, p := range f.providers {
		out, err := p.Complete(ctx, messages, opts)
		if err == nil {
			return out, nil
		}
		f.log.WithError(err).WithField("provider", p.Name()).Warn("completion failed")
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("llm: all providers failed: %w", errors.Join(errs...))
}

func (f *Fallback) Close() error {
	var errs []error
	for _, p := range f.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// Timeout bounds every completion call.
type Timeout struct {
	Provider
	d time.Duration
}

func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &Timeout{Provider: p, d: d}
}

func (t *Timeout) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.Provider.Complete(ctx, messages, opts)
}
