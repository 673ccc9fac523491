package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get returns the effective, validated settings.
	Get() (domain.Settings, error)

	// Value returns the effective value of one key, formatted for display.
	Value(key string) (string, error)

	// Set parses value for key and persists it.
	Set(key, value string) error

	// Keys returns every recognised setting key, sorted.
	Keys() []string
}
