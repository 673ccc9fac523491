package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyDocumentsDir   = "documents.dir"
	KeyCacheBackend   = "cache.backend"
	KeyCacheDir       = "cache.dir"
	KeyTopK           = "retrieval.top_k"
	KeyMinScore       = "retrieval.min_score"
	KeyMaxFeatures    = "index.max_features"
	KeyExtractTimeout = "extract.timeout"
	KeyOCREnabled     = "ocr.enabled"
	KeyOCRMaxPages    = "ocr.max_pages"
	KeyOCRDPI         = "ocr.dpi"
	KeyOCRLanguage    = "ocr.language"
	KeyOCRRate        = "ocr.pages_per_second"
	KeyWatchDebounce  = "watch.debounce"
)

// Environment variables that override the config file.
const (
	EnvDocumentsDir = "DOCQA_DOCUMENTS_DIR"
	EnvCacheDir     = "DOCQA_CACHE_DIR"
	EnvCacheBackend = "DOCQA_CACHE_BACKEND"
)

// settingKind is the value type stored under a key.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

var settingKinds = map[string]settingKind{
	KeyDocumentsDir:   kindString,
	KeyCacheBackend:   kindString,
	KeyCacheDir:       kindString,
	KeyTopK:           kindInt,
	KeyMinScore:       kindFloat,
	KeyMaxFeatures:    kindInt,
	KeyExtractTimeout: kindDuration,
	KeyOCREnabled:     kindBool,
	KeyOCRMaxPages:    kindInt,
	KeyOCRDPI:         kindInt,
	KeyOCRLanguage:    kindString,
	KeyOCRRate:        kindFloat,
	KeyWatchDebounce:  kindDuration,
}

// SettingsService reads typed settings from the config store, with
// environment overrides on top.
type SettingsService struct {
	configStore driven.ConfigStore
	configDir   string
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a settings service.
// configDir is used to resolve the default cache directory.
func NewSettingsService(configStore driven.ConfigStore, configDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		configDir:   configDir,
		lookupEnv:   os.LookupEnv,
	}
}

// Keys returns every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the effective settings: defaults, then the config file,
// then environment variables. The result is validated.
func (s *SettingsService) Get() (domain.Settings, error) {
	settings, err := s.load()
	if err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// load merges defaults, the config file and environment variables without
// validating the result. A malformed duration keeps its default and is
// reported as the error; every other field is still loaded.
func (s *SettingsService) load() (domain.Settings, error) {
	settings := domain.DefaultSettings()
	settings.CacheDir = filepath.Join(s.configDir, "cache")

	settings.DocumentsDir = s.getString(KeyDocumentsDir, settings.DocumentsDir)
	settings.CacheBackend = domain.CacheBackend(s.getString(KeyCacheBackend, settings.CacheBackend.String()))
	settings.CacheDir = s.getString(KeyCacheDir, settings.CacheDir)
	settings.TopK = s.getInt(KeyTopK, settings.TopK)
	settings.MinScore = s.getFloat(KeyMinScore, settings.MinScore)
	settings.MaxFeatures = s.getInt(KeyMaxFeatures, settings.MaxFeatures)
	settings.OCR.Enabled = s.getBool(KeyOCREnabled, settings.OCR.Enabled)
	settings.OCR.MaxPages = s.getInt(KeyOCRMaxPages, settings.OCR.MaxPages)
	settings.OCR.DPI = s.getInt(KeyOCRDPI, settings.OCR.DPI)
	settings.OCR.Language = s.getString(KeyOCRLanguage, settings.OCR.Language)
	settings.OCR.PagesPerSecond = s.getFloat(KeyOCRRate, settings.OCR.PagesPerSecond)

	var timeoutErr, debounceErr error
	settings.ExtractTimeout, timeoutErr = s.getDuration(KeyExtractTimeout, settings.ExtractTimeout)
	settings.WatchDebounce, debounceErr = s.getDuration(KeyWatchDebounce, settings.WatchDebounce)

	if v, ok := s.lookupEnv(EnvDocumentsDir); ok && v != "" {
		settings.DocumentsDir = v
	}
	if v, ok := s.lookupEnv(EnvCacheDir); ok && v != "" {
		settings.CacheDir = v
	}
	if v, ok := s.lookupEnv(EnvCacheBackend); ok && v != "" {
		settings.CacheBackend = domain.CacheBackend(v)
	}

	return settings, errors.Join(timeoutErr, debounceErr)
}

// Value returns the effective value of key.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKinds[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	// Invalid values are shown as stored so they can be inspected and fixed.
	settings, _ := s.load()

	switch key {
	case KeyDocumentsDir:
		return settings.DocumentsDir, nil
	case KeyCacheBackend:
		return settings.CacheBackend.String(), nil
	case KeyCacheDir:
		return settings.CacheDir, nil
	case KeyTopK:
		return strconv.Itoa(settings.TopK), nil
	case KeyMinScore:
		return strconv.FormatFloat(settings.MinScore, 'g', -1, 64), nil
	case KeyMaxFeatures:
		return strconv.Itoa(settings.MaxFeatures), nil
	case KeyExtractTimeout:
		return s.durationValue(KeyExtractTimeout, settings.ExtractTimeout), nil
	case KeyOCREnabled:
		return strconv.FormatBool(settings.OCR.Enabled), nil
	case KeyOCRMaxPages:
		return strconv.Itoa(settings.OCR.MaxPages), nil
	case KeyOCRDPI:
		return strconv.Itoa(settings.OCR.DPI), nil
	case KeyOCRLanguage:
		return settings.OCR.Language, nil
	case KeyOCRRate:
		return strconv.FormatFloat(settings.OCR.PagesPerSecond, 'g', -1, 64), nil
	default:
		return s.durationValue(KeyWatchDebounce, settings.WatchDebounce), nil
	}
}

// durationValue formats d, or returns the stored text when it does not parse.
func (s *SettingsService) durationValue(key string, d time.Duration) string {
	if _, err := s.getDuration(key, d); err != nil {
		return s.configStore.GetString(key)
	}
	return d.String()
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	var err error
	switch kind {
	case kindInt:
		parsed, err = strconv.Atoi(value)
	case kindFloat:
		parsed, err = strconv.ParseFloat(value, 64)
	case kindBool:
		parsed, err = strconv.ParseBool(value)
	case kindDuration:
		_, err = time.ParseDuration(value)
		parsed = value
	default:
		parsed = value
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}
