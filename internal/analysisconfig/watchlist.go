package analysisconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Watchlist is the watchlist document: named portfolios of symbols in
// declaration order. Ordering is preserved all the way into the report.
type Watchlist struct {
	Portfolios []Portfolio `yaml:"portfolios" json:"portfolios"`
}

// Portfolio is a named set of holdings.
type Portfolio struct {
	Name     string    `yaml:"name" json:"name"`
	Holdings []Holding `yaml:"holdings" json:"holdings"`
}

// Holding is one symbol in a portfolio. Weight is optional; zero means
// equal weighting within the portfolio.
type Holding struct {
	Symbol string  `yaml:"symbol" json:"symbol"`
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// LoadWatchlist reads and validates the watchlist YAML document.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	return ParseWatchlist(data)
}

// ParseWatchlist decodes and validates a watchlist document.
func ParseWatchlist(data []byte) (*Watchlist, error) {
	var wl Watchlist
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wl); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	if err := wl.Validate(); err != nil {
		return nil, err
	}

	return &wl, nil
}

// Validate checks that the watchlist names at least one symbol and that
// every entry is well formed. An empty watchlist is a fatal configuration
// error: there is nothing to analyze.
func (w *Watchlist) Validate() error {
	if len(w.Portfolios) == 0 {
		return ValidationError{"portfolios", "watchlist must declare at least one portfolio"}
	}

	total := 0
	for i, p := range w.Portfolios {
		if p.Name == "" {
			return ValidationError{fmt.Sprintf("portfolios[%d].name", i), "required"}
		}
		seen := make(map[string]bool, len(p.Holdings))
		for j, h := range p.Holdings {
			if h.Symbol == "" {
				return ValidationError{fmt.Sprintf("portfolios[%d].holdings[%d].symbol", i, j), "required"}
			}
			if h.Weight < 0 {
				return ValidationError{fmt.Sprintf("portfolios[%d].holdings[%d].weight", i, j), "must be >= 0"}
			}
			if seen[h.Symbol] {
				return ValidationError{fmt.Sprintf("portfolios[%d]", i), fmt.Sprintf("duplicate symbol %q", h.Symbol)}
			}
			seen[h.Symbol] = true
		}
		total += len(p.Holdings)
	}

	if total == 0 {
		return ValidationError{"portfolios", "watchlist must declare at least one symbol"}
	}

	return nil
}

// AllSymbols returns every distinct symbol across all portfolios, in
// declaration order (first occurrence wins).
func (w *Watchlist) AllSymbols() []string {
	seen := make(map[string]bool)
	symbols := make([]string, 0)
	for _, p := range w.Portfolios {
		for _, h := range p.Holdings {
			if !seen[h.Symbol] {
				seen[h.Symbol] = true
				symbols = append(symbols, h.Symbol)
			}
		}
	}
	return symbols
}

// DisplayName returns the configured display name for a symbol, falling
// back to the symbol itself.
func (w *Watchlist) DisplayName(symbol string) string {
	for _, p := range w.Portfolios {
		for _, h := range p.Holdings {
			if h.Symbol == symbol && h.Name != "" {
				return h.Name
			}
		}
	}
	return symbol
}

// Weights returns the normalized weight per symbol for one portfolio.
// Holdings without a weight share the portfolio equally; explicit weights
// need not sum to 1, they are normalized here.
func (p Portfolio) Weights() map[string]float64 {
	weights := make(map[string]float64, len(p.Holdings))
	if len(p.Holdings) == 0 {
		return weights
	}

	sum := 0.0
	for _, h := range p.Holdings {
		sum += h.Weight
	}

	if sum == 0 {
		equal := 1.0 / float64(len(p.Holdings))
		for _, h := range p.Holdings {
			weights[h.Symbol] = equal
		}
		return weights
	}

	for _, h := range p.Holdings {
		weights[h.Symbol] = h.Weight / sum
	}
	return weights
}

// Symbols returns the portfolio's symbols in declaration order.
func (p Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}
