package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRuleFile(t, `
[[rule]]
phrase = "silla"
category = "mobiliario"
title_weight = 30
description_weight = 10
product_weight = 20

[[rule]]
phrase = "notebook"
title_weight = 25
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "silla", rules[0].Phrase)
	assert.Equal(t, "mobiliario", rules[0].Category)
	assert.Equal(t, 30, rules[0].TitleWeight)
	assert.Equal(t, 10, rules[0].DescriptionWeight)
	assert.Equal(t, 20, rules[0].ProductWeight)

	assert.Equal(t, "general", rules[1].Category, "missing category defaults")
}

func TestLoadRulesEmptyFile(t *testing.T) {
	path := writeRuleFile(t, "")

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRulesRejectsMissingPhrase(t *testing.T) {
	path := writeRuleFile(t, `
[[rule]]
title_weight = 10
`)

	_, err := LoadRules(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
