package register

import (
	"strings"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/extract"
)

// Strategy is one way of reading entries off a register page. Strategies are
// independent fallbacks for structural drift in the source; none refines the
// output of another.
type Strategy interface {
	Name() string
	Extract(doc *extract.Document) []domain.RegisterEntry
}

// Parser tries its strategies in order and keeps the first non-empty result.
type Parser struct {
	Strategies []Strategy
}

// NewParser returns a Parser with the table, document-walk and flat-text
// strategies, in that order.
func NewParser() *Parser {
	return &Parser{Strategies: []Strategy{TableRows{}, DocumentWalk{}, FlatText{}}}
}

// Result is the de-duplicated output of the strategy that fired. Strategy is
// empty when every strategy came back empty.
type Result struct {
	Entries  []domain.RegisterEntry
	Strategy string
}

// Parse runs the strategies against doc. Later strategies are not invoked
// once one yields entries.
func (p *Parser) Parse(doc *extract.Document) Result {
	for _, s := range p.Strategies {
		entries := s.Extract(doc)
		if len(entries) > 0 {
			return Result{Entries: Dedup(entries), Strategy: s.Name()}
		}
	}
	return Result{Entries: []domain.RegisterEntry{}}
}

var numberPrefixes = []string{"MC-", "FF-", "MX-"}

// isDocketNumber reports whether text carries one of the accepted docket
// prefixes anywhere.
func isDocketNumber(text string) bool {
	for _, p := range numberPrefixes {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Dedup keeps the first entry for each (number, title) pair in input order.
func Dedup(entries []domain.RegisterEntry) []domain.RegisterEntry {
	seen := make(map[domain.EntryKey]struct{}, len(entries))
	out := make([]domain.RegisterEntry, 0, len(entries))
	for _, e := range entries {
		k := e.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
