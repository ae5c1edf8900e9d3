// Package i18n holds the UI string bundles.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed locales/*.json
var localesFS embed.FS

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []string
}

// Load reads {locale}.json for every supported locale from fsys. Only the
// fallback locale is required to exist.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	b := &Bundle{
		dict:     map[string]map[string]string{},
		fallback: fallback,
	}
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	b.supported = append([]string(nil), supported...)
	for _, l := range supported {
		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	return b, nil
}

// Embedded loads the bundles compiled into the binary.
func Embedded(fallback string, supported []string) (*Bundle, error) {
	sub, err := fs.Sub(localesFS, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub, fallback, supported)
}

// Supported returns the locales in the order they were loaded.
func (b *Bundle) Supported() []string {
	return append([]string(nil), b.supported...)
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if v, ok := b.lookup(lang, key); ok {
		return v
	}
	return key
}

// Tf formats the translation for key with args.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}

// Has reports whether key resolves in lang or the fallback.
func (b *Bundle) Has(lang, key string) bool {
	_, ok := b.lookup(lang, key)
	return ok
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v, true
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return "", false
}
