// Package extract turns fetched HTML into article candidates by running an
// ordered chain of independent extraction strategies.
package extract

import (
	"errors"
	"log/slog"
	"strings"

	"newsscraper/pkg/models"
)

// ErrNoContentFound means every strategy ran and none produced acceptable
// content.
var ErrNoContentFound = errors.New("no content found by any extraction strategy")

// Strategy is one approach to extracting article content from a page.
type Strategy interface {
	Name() string
	Attempt(fr *models.FetchResult) (*models.ExtractionCandidate, error)
}

// Chain runs strategies in a fixed priority order and stops at the first
// candidate whose cleaned text clears the minimum length. The order is held
// as data so it can be inspected and reordered in tests.
type Chain struct {
	strategies []Strategy
	minLength  int
	logger     *slog.Logger
}

// NewChain assembles the default strategy order: structured metadata first,
// generic heuristics next, raw tag stripping last.
func NewChain(minLength int, logger *slog.Logger) *Chain {
	return NewChainWith(minLength, logger,
		&MetadataStrategy{},
		&TrafilaturaStrategy{},
		&ReadabilityStrategy{},
		&DensityStrategy{},
		&FallbackStrategy{},
	)
}

// NewChainWith assembles a chain with an explicit strategy order.
func NewChainWith(minLength int, logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, minLength: minLength, logger: logger}
}

// StrategyNames returns the configured order.
func (c *Chain) StrategyNames() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract runs the chain against a fetched page. Strategy-local failures
// are logged and swallowed; the chain advances until a candidate passes or
// every strategy has run.
func (c *Chain) Extract(fr *models.FetchResult) (*models.ExtractionCandidate, error) {
	for _, strategy := range c.strategies {
		candidate, err := strategy.Attempt(fr)
		if err != nil {
			c.logger.Debug("extraction strategy failed",
				"strategy", strategy.Name(), "url", fr.ResolvedURL, "error", err)
			continue
		}

		if textLength(candidate.Text) < c.minLength {
			c.logger.Debug("extraction candidate below threshold",
				"strategy", strategy.Name(), "url", fr.ResolvedURL, "length", textLength(candidate.Text))
			continue
		}

		candidate.Strategy = strategy.Name()
		return candidate, nil
	}

	return nil, ErrNoContentFound
}

func textLength(s string) int {
	return len(strings.TrimSpace(s))
}

// scoreCandidate derives a quality score from text length and the
// strategy's structural confidence. Length saturates at 2000 characters.
func scoreCandidate(text string, structuralConfidence float64) float64 {
	lengthScore := float64(textLength(text)) / 2000
	if lengthScore > 1 {
		lengthScore = 1
	}
	return lengthScore * structuralConfidence
}
