// Package batch fetches and validates quotes for a symbol list with
// best-effort semantics: individual failures never abort the batch, and
// the batch succeeds as long as one symbol parsed.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"stockquote/internal/provider"
	"stockquote/internal/quote"
)

type Orchestrator struct {
	primary        provider.Provider
	fallback       provider.Provider // nil when disabled
	maxConcurrency int
	logger         *slog.Logger
}

func New(primary, fallback provider.Provider, maxConcurrency int, logger *slog.Logger) *Orchestrator {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{primary: primary, fallback: fallback, maxConcurrency: maxConcurrency, logger: logger}
}

type slot struct {
	q        quote.Quote
	warnings []string
	errMsg   string
}

// Run fetches every symbol independently and concurrently, validates the
// parsed quotes, and aggregates per-symbol errors and quality warnings.
// The request-time market status is computed once for the whole batch.
func (o *Orchestrator) Run(ctx context.Context, symbols []string) quote.BatchResult {
	res := quote.BatchResult{MarketStatus: quote.CurrentSession(time.Now())}

	slots := make([]slot, len(symbols))
	g := new(errgroup.Group)
	g.SetLimit(o.maxConcurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			slots[i] = o.fetchOne(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range slots {
		if s.errMsg != "" {
			res.Errors = append(res.Errors, s.errMsg)
			continue
		}
		res.Quotes = append(res.Quotes, s.q)
		res.Warnings = append(res.Warnings, s.warnings...)
	}
	return res
}

// fetchOne performs one symbol's round trip(s) and validation. Panics are
// recovered here so one bad symbol cannot take down the batch.
func (o *Orchestrator) fetchOne(ctx context.Context, sym string) (s slot) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("panic while processing symbol", "symbol", sym, "panic", r)
			s = slot{errMsg: fmt.Sprintf("%s: internal error: %v", sym, r)}
		}
	}()

	q, err := o.primary.Fetch(ctx, sym)
	if err != nil && o.fallback != nil {
		o.logger.Warn("primary provider failed, trying fallback",
			"symbol", sym, "provider", o.primary.Name(), "error", err)
		q, err = o.fallback.Fetch(ctx, sym)
	}
	if err != nil {
		return slot{errMsg: fmt.Sprintf("%s: %v", sym, err)}
	}

	validated, warnings := quote.Validate(q)
	return slot{q: validated, warnings: warnings}
}
