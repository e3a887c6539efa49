// Package file provides file-based configuration adapters.
//
// Adapters:
//   - Config: TOML-based application configuration
//   - LoadRules: TOML keyword-rule file parsing
//   - RulesWatcher: hot reload of the rule file via fsnotify
package file
