package provider

import (
	"context"
	"errors"

	"stockquote/internal/quote"
)

// ErrNotParseable marks an upstream reply that cannot be turned into a
// Quote: regex miss, too few fields, or a non-positive current price.
// Parsers wrap it with the concrete reason and never panic past their
// boundary.
var ErrNotParseable = errors.New("reply not parseable")

// Provider fetches one quote per upstream round trip.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (quote.Quote, error)
}
