package i18n

import (
	"encoding/json"
	"io/fs"
	"testing"
	"testing/fstest"
)

var locales = []string{"tr", "en", "es", "ru"}

func TestTranslateFallsBackToDefault(t *testing.T) {
	b, err := Embedded("tr", locales)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("en", "nav.products"); got != "Products" {
		t.Fatalf("expected Products, got %s", got)
	}
	// ru has no projects.empty entry and uses the tr string.
	if got, want := b.T("ru", "projects.empty"), b.T("tr", "projects.empty"); got != want {
		t.Fatalf("expected fallback %q, got %q", want, got)
	}
	if got := b.T("en", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo, got %s", got)
	}
	if b.Has("en", "missing.key") {
		t.Fatalf("missing key reported present")
	}
	if got := b.Tf("en", "pagination.page", 2, 5); got != "Page 2 of 5" {
		t.Fatalf("unexpected Tf output %q", got)
	}
}

func TestEmbeddedBundlesHaveNoUnknownKeys(t *testing.T) {
	base := readBundle(t, "tr")
	for _, l := range locales[1:] {
		for key := range readBundle(t, l) {
			if _, ok := base[key]; !ok {
				t.Fatalf("%s.json has key %q missing from tr.json", l, key)
			}
		}
	}
}

func TestLoadRequiresFallback(t *testing.T) {
	fsys := fstest.MapFS{"en.json": {Data: []byte(`{"a":"b"}`)}}
	if _, err := Load(fsys, "tr", []string{"tr", "en"}); err == nil {
		t.Fatalf("expected error for missing fallback bundle")
	}
	b, err := Load(fsys, "en", []string{"en", "de"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("de", "a"); got != "b" {
		t.Fatalf("expected fallback value, got %q", got)
	}
	if got := b.Supported(); len(got) != 2 || got[0] != "en" {
		t.Fatalf("unexpected supported list %v", got)
	}
}

func readBundle(t *testing.T, l string) map[string]string {
	t.Helper()
	raw, err := fs.ReadFile(localesFS, "locales/"+l+".json")
	if err != nil {
		t.Fatalf("read %s: %v", l, err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s: %v", l, err)
	}
	return m
}
