package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// compiledRule pairs a keyword rule with its precompiled whole-word,
// case-insensitive matcher.
type compiledRule struct {
	rule    domain.KeywordRule
	pattern *regexp.Regexp
}

// Scorer evaluates tender text against the keyword rules. The active rule
// set is an in-memory mirror of the store, reloaded atomically: readers
// snapshot the current slice under the lock and iterate without holding
// it, so a reload never blocks evaluation and evaluation never observes a
// half-swapped set.
type Scorer struct {
	rules driven.RuleStore

	mu     sync.Mutex
	active []compiledRule
}

// NewScorer creates a scorer with an empty rule set. Call ReloadRules to
// populate it.
func NewScorer(rules driven.RuleStore) *Scorer {
	return &Scorer{rules: rules}
}

// ReloadRules re-reads all rules from the store, precompiles each phrase
// and swaps the active set. Rules whose phrase fails to compile are
// skipped with a warning.
func (s *Scorer) ReloadRules(ctx context.Context) error {
	list, err := s.rules.List(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	compiled := make([]compiledRule, 0, len(list))
	for _, r := range list {
		pattern, err := compilePhrase(r.Phrase)
		if err != nil {
			logger.Warnf("skipping rule %d: cannot compile phrase %q: %v", r.ID, r.Phrase, err)
			continue
		}
		compiled = append(compiled, compiledRule{rule: r, pattern: pattern})
	}

	s.mu.Lock()
	s.active = compiled
	s.mu.Unlock()

	logger.Infof("scoring rules reloaded: %d active", len(compiled))
	return nil
}

// RuleCount returns the number of active compiled rules.
func (s *Scorer) RuleCount() int {
	return len(s.snapshot())
}

// EvaluateTitle scores a tender name. Every rule with a nonzero title
// weight whose phrase matches as a whole word contributes its weight and
// one reason line. Empty text scores zero with no reasons.
func (s *Scorer) EvaluateTitle(text string) (int, []string) {
	if text == "" {
		return 0, nil
	}

	var (
		score   int
		reasons []string
	)
	for _, c := range s.snapshot() {
		if c.rule.TitleWeight == 0 {
			continue
		}
		if c.pattern.MatchString(text) {
			score += c.rule.TitleWeight
			reasons = append(reasons, fmt.Sprintf("title match %q (%+d)", c.rule.Phrase, c.rule.TitleWeight))
		}
	}
	return score, reasons
}

// EvaluateDetail scores the deep-detail text: the description with the
// description weights and the product text with the product weights,
// independently. Pure function; organization bias is the caller's
// concern.
func (s *Scorer) EvaluateDetail(description, productText string) (int, []string) {
	if description == "" && productText == "" {
		return 0, nil
	}

	var (
		score   int
		reasons []string
	)
	for _, c := range s.snapshot() {
		if c.rule.DescriptionWeight != 0 && description != "" && c.pattern.MatchString(description) {
			score += c.rule.DescriptionWeight
			reasons = append(reasons, fmt.Sprintf("description match %q (%+d)", c.rule.Phrase, c.rule.DescriptionWeight))
		}
		if c.rule.ProductWeight != 0 && productText != "" && c.pattern.MatchString(productText) {
			score += c.rule.ProductWeight
			reasons = append(reasons, fmt.Sprintf("product match %q (%+d)", c.rule.Phrase, c.rule.ProductWeight))
		}
	}
	return score, reasons
}

// snapshot returns the current rule set reference. The slice is never
// mutated after the swap, so iterating a stale snapshot is safe.
func (s *Scorer) snapshot() []compiledRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// compilePhrase builds the strict whole-word, case-insensitive matcher
// for a phrase. Word boundaries rule out substring false positives. The
// boundaries are spelled out as not-a-letter-or-digit classes because
// \b only understands ASCII word characters and would strand phrases
// that start or end with an accented letter ("útiles", "café").
func compilePhrase(phrase string) (*regexp.Regexp, error) {
	const (
		boundaryLeft  = `(?:^|[^\p{L}\p{N}_])`
		boundaryRight = `(?:[^\p{L}\p{N}_]|$)`
	)
	return regexp.Compile(`(?i)` + boundaryLeft + regexp.QuoteMeta(strings.ToLower(phrase)) + boundaryRight)
}
