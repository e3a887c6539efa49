package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// ruleFile is the on-disk shape of a keyword rule set:
//
//	[[rule]]
//	phrase = "notebook"
//	category = "hardware"
//	title_weight = 30
//	description_weight = 10
//	product_weight = 20
type ruleFile struct {
	Rules []ruleEntry `toml:"rule"`
}

type ruleEntry struct {
	Phrase            string `toml:"phrase"`
	Category          string `toml:"category"`
	TitleWeight       int    `toml:"title_weight"`
	DescriptionWeight int    `toml:"description_weight"`
	ProductWeight     int    `toml:"product_weight"`
}

// LoadRules parses a TOML rule file into domain rules. Entries without a
// phrase are rejected; an empty file yields an empty set.
func LoadRules(path string) ([]domain.KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}

	var parsed ruleFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	rules := make([]domain.KeywordRule, 0, len(parsed.Rules))
	for i, entry := range parsed.Rules {
		if entry.Phrase == "" {
			return nil, fmt.Errorf("%w: rule %d has no phrase", domain.ErrInvalidInput, i+1)
		}
		category := entry.Category
		if category == "" {
			category = "general"
		}
		rules = append(rules, domain.KeywordRule{
			Phrase:            entry.Phrase,
			Category:          category,
			TitleWeight:       entry.TitleWeight,
			DescriptionWeight: entry.DescriptionWeight,
			ProductWeight:     entry.ProductWeight,
		})
	}
	return rules, nil
}
