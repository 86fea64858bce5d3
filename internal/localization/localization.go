// Package localization loads the bot's user-visible strings from JSON files,
// one file per language code (e.g. "en.json"). Game handlers look strings up
// by key; missing keys fall back to English and finally to the key itself.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fallbackLang = "en"

// Localizer holds the translation tables for the application.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads every <lang>.json file from the directory.
func NewLocalizer(path string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")
		if err := l.loadFile(lang, filepath.Join(path, file.Name())); err != nil {
			return nil, err
		}
	}

	if _, ok := l.translations[fallbackLang]; !ok {
		return nil, fmt.Errorf("localization directory %s has no %s.json", path, fallbackLang)
	}

	return l, nil
}

func (l *Localizer) loadFile(lang, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read localization file %s: %w", path, err)
	}

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to parse localization file %s: %w", path, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()
	return nil
}

// Languages returns the language codes that were loaded.
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		langs = append(langs, lang)
	}
	return langs
}

// GetString returns the localized string for a key. Unknown languages fall
// back to English; an unknown key is returned verbatim so a missing
// translation stays visible instead of blanking a message.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if translations, ok := l.translations[lang]; ok {
		if value, ok := translations[key]; ok {
			return value
		}
	}

	if lang != fallbackLang {
		if translations, ok := l.translations[fallbackLang]; ok {
			if value, ok := translations[key]; ok {
				return value
			}
		}
	}

	return key
}
