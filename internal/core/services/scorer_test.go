package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// scorerMockRuleStore implements driven.RuleStore for scorer testing.
type scorerMockRuleStore struct {
	mu    sync.Mutex
	rules []domain.KeywordRule
	err   error
}

func (m *scorerMockRuleStore) List(_ context.Context) ([]domain.KeywordRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.KeywordRule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *scorerMockRuleStore) ReplaceAll(_ context.Context, rules []domain.KeywordRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
	return nil
}

func newScorerWith(t *testing.T, rules ...domain.KeywordRule) *Scorer {
	t.Helper()
	s := NewScorer(&scorerMockRuleStore{rules: rules})
	require.NoError(t, s.ReloadRules(context.Background()))
	return s
}

func TestScorerWholeWordMatching(t *testing.T) {
	s := newScorerWith(t, domain.KeywordRule{Phrase: "silla", TitleWeight: 10})

	score, reasons := s.EvaluateTitle("Compra de sillas ergonómicas")
	assert.Equal(t, 0, score, "embedded phrase must not match")
	assert.Empty(t, reasons)

	score, reasons = s.EvaluateTitle("Compra de silla ergonómica")
	assert.Equal(t, 10, score)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "silla")
}

func TestScorerAccentedPhraseBoundaries(t *testing.T) {
	s := newScorerWith(t,
		domain.KeywordRule{Phrase: "útiles", TitleWeight: 10},
		domain.KeywordRule{Phrase: "café", TitleWeight: 5},
		domain.KeywordRule{Phrase: "óptica", TitleWeight: 7},
	)

	// Phrases that start or end with a non-ASCII letter must still match
	// as standalone tokens.
	score, _ := s.EvaluateTitle("Compra de útiles escolares")
	assert.Equal(t, 10, score)

	score, _ = s.EvaluateTitle("Suministro de café")
	assert.Equal(t, 5, score)

	score, _ = s.EvaluateTitle("óptica para laboratorio")
	assert.Equal(t, 7, score)

	score, _ = s.EvaluateTitle("Útiles de oficina")
	assert.Equal(t, 10, score, "folding applies to accented letters too")

	// Embedded occurrences still do not count.
	score, _ = s.EvaluateTitle("Elementos inútiles")
	assert.Equal(t, 0, score)

	score, _ = s.EvaluateTitle("Caféteras industriales")
	assert.Equal(t, 0, score, "phrase followed by a letter is not a standalone token")
}

func TestScorerCaseInsensitive(t *testing.T) {
	s := newScorerWith(t, domain.KeywordRule{Phrase: "silla", TitleWeight: 10})

	score, _ := s.EvaluateTitle("Compra de SILLA gamer")
	assert.Equal(t, 10, score)
}

func TestScorerAdditiveWeights(t *testing.T) {
	s := newScorerWith(t,
		domain.KeywordRule{Phrase: "notebook", TitleWeight: 10},
		domain.KeywordRule{Phrase: "servidor", TitleWeight: 20},
	)

	score, reasons := s.EvaluateTitle("Adquisición de notebook y servidor")
	assert.Equal(t, 30, score)
	assert.Len(t, reasons, 2)
}

func TestScorerEmptyText(t *testing.T) {
	s := newScorerWith(t, domain.KeywordRule{Phrase: "silla", TitleWeight: 10, DescriptionWeight: 5})

	score, reasons := s.EvaluateTitle("")
	assert.Equal(t, 0, score)
	assert.Nil(t, reasons)

	score, reasons = s.EvaluateDetail("", "")
	assert.Equal(t, 0, score)
	assert.Nil(t, reasons)
}

func TestScorerDetailSections(t *testing.T) {
	s := newScorerWith(t, domain.KeywordRule{
		Phrase:            "impresora",
		DescriptionWeight: 5,
		ProductWeight:     15,
	})

	score, reasons := s.EvaluateDetail(
		"Se requiere una impresora láser",
		"- Impresora multifuncional (2 un)",
	)
	assert.Equal(t, 20, score)
	assert.Len(t, reasons, 2)
}

func TestScorerZeroWeightSkipped(t *testing.T) {
	s := newScorerWith(t, domain.KeywordRule{Phrase: "silla", DescriptionWeight: 5})

	score, reasons := s.EvaluateTitle("Compra de silla")
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestScorerReloadSwapsRuleSet(t *testing.T) {
	store := &scorerMockRuleStore{rules: []domain.KeywordRule{
		{Phrase: "silla", TitleWeight: 10},
	}}
	s := NewScorer(store)
	require.NoError(t, s.ReloadRules(context.Background()))
	assert.Equal(t, 1, s.RuleCount())

	require.NoError(t, store.ReplaceAll(context.Background(), []domain.KeywordRule{
		{Phrase: "mesa", TitleWeight: 5},
		{Phrase: "escritorio", TitleWeight: 5},
	}))
	require.NoError(t, s.ReloadRules(context.Background()))
	assert.Equal(t, 2, s.RuleCount())

	score, _ := s.EvaluateTitle("Compra de silla")
	assert.Equal(t, 0, score, "old rules must be gone after reload")
}

func TestScorerConcurrentReloadAndEvaluate(t *testing.T) {
	store := &scorerMockRuleStore{rules: []domain.KeywordRule{
		{Phrase: "silla", TitleWeight: 10},
	}}
	s := NewScorer(store)
	require.NoError(t, s.ReloadRules(context.Background()))

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = s.ReloadRules(context.Background())
			}
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					score, _ := s.EvaluateTitle("Compra de silla")
					assert.Equal(t, 10, score)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(done)
	wg.Wait()
}
