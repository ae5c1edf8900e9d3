package locale

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// RouteKey identifies a content section independently of its localized URL segment.
type RouteKey string

const (
	RouteProducts RouteKey = "products"
	RouteProjects RouteKey = "projects"
	RouteNews     RouteKey = "news"
	RouteAbout    RouteKey = "about"
	RouteContact  RouteKey = "contact"
	RouteServices RouteKey = "services"
	RouteTeam     RouteKey = "team"
)

// LocaleConfig declares one supported locale.
type LocaleConfig struct {
	Code string
	Name string
	// Tag is the BCP 47 tag used for Accept-Language matching. Defaults to Code.
	Tag string
}

// Config is the static locale table the Registry is built from.
type Config struct {
	Default string
	Locales []LocaleConfig
	Routes  map[RouteKey]map[string]string
}

// Locale is a read-only view of a supported locale.
type Locale struct {
	Code    string
	Name    string
	Default bool
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("locale: invalid configuration: %s", strings.Join(e.problems, "; "))
}

// Problems returns a copy of the validation messages.
func (e *ValidationError) Problems() []string {
	out := make([]string, len(e.problems))
	copy(out, e.problems)
	return out
}

// Registry holds the immutable locale and route translation tables.
// It is safe for concurrent use because nothing mutates it after NewRegistry.
type Registry struct {
	locales []Locale
	index   map[string]int
	bases   []language.Base
	def     string
	routes  map[RouteKey]map[string]string
	reverse map[string]map[string]RouteKey
	keys    []RouteKey
}

// NewRegistry validates cfg and builds a Registry from it.
func NewRegistry(cfg Config) (*Registry, error) {
	var problems []string

	def := strings.TrimSpace(cfg.Default)
	r := &Registry{
		index:   make(map[string]int, len(cfg.Locales)),
		def:     def,
		routes:  make(map[RouteKey]map[string]string, len(cfg.Routes)),
		reverse: make(map[string]map[string]RouteKey, len(cfg.Locales)),
	}

	if len(cfg.Locales) == 0 {
		problems = append(problems, "no locales configured")
	}
	for _, lc := range cfg.Locales {
		code := strings.TrimSpace(lc.Code)
		switch {
		case code == "":
			problems = append(problems, "locale code must not be empty")
			continue
		case code != strings.ToLower(code):
			problems = append(problems, fmt.Sprintf("locale code %q must be lower-case", code))
			continue
		}
		if _, dup := r.index[code]; dup {
			problems = append(problems, fmt.Sprintf("duplicate locale %q", code))
			continue
		}
		tagValue := strings.TrimSpace(lc.Tag)
		if tagValue == "" {
			tagValue = code
		}
		tag, err := language.Parse(tagValue)
		if err != nil {
			problems = append(problems, fmt.Sprintf("locale %q has invalid tag %q", code, tagValue))
			continue
		}
		base, _ := tag.Base()
		name := strings.TrimSpace(lc.Name)
		if name == "" {
			name = code
		}
		r.index[code] = len(r.locales)
		r.locales = append(r.locales, Locale{Code: code, Name: name, Default: code == def})
		r.bases = append(r.bases, base)
	}
	if def == "" {
		problems = append(problems, "default locale must be set")
	} else if _, ok := r.index[def]; !ok {
		problems = append(problems, fmt.Sprintf("default locale %q is not a configured locale", def))
	}

	for key, byLocale := range cfg.Routes {
		if strings.TrimSpace(string(key)) == "" {
			problems = append(problems, "route key must not be empty")
			continue
		}
		segments := make(map[string]string, len(byLocale))
		for code, seg := range byLocale {
			seg = strings.Trim(strings.TrimSpace(seg), "/")
			if seg == "" {
				problems = append(problems, fmt.Sprintf("route %q has an empty segment for %q", key, code))
				continue
			}
			if _, ok := r.index[code]; !ok {
				problems = append(problems, fmt.Sprintf("route %q translates unknown locale %q", key, code))
				continue
			}
			segments[code] = seg
		}
		r.routes[key] = segments
		r.keys = append(r.keys, key)
	}
	sort.Slice(r.keys, func(i, j int) bool { return r.keys[i] < r.keys[j] })

	for _, loc := range r.locales {
		seen := make(map[string]RouteKey, len(r.keys))
		for _, key := range r.keys {
			seg := r.TranslatedSegment(key, loc.Code)
			if other, dup := seen[seg]; dup {
				problems = append(problems, fmt.Sprintf("routes %q and %q share segment %q in %q", other, key, seg, loc.Code))
				continue
			}
			seen[seg] = key
		}
		r.reverse[loc.Code] = seen
	}

	if len(problems) > 0 {
		return nil, &ValidationError{problems: problems}
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables known to be valid.
func MustRegistry(cfg Config) *Registry {
	r, err := NewRegistry(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// Codes returns the supported locale codes in registry order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.locales))
	for i, l := range r.locales {
		out[i] = l.Code
	}
	return out
}

// Locales returns the supported locales in registry order.
func (r *Registry) Locales() []Locale {
	out := make([]Locale, len(r.locales))
	copy(out, r.locales)
	return out
}

// Default returns the default locale code.
func (r *Registry) Default() string { return r.def }

// IsSupported reports whether code is a configured locale.
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.index[code]
	return ok
}

// IsDefault reports whether code is the default locale.
func (r *Registry) IsDefault(code string) bool { return code == r.def }

// DisplayName returns the configured name for code, or code itself.
func (r *Registry) DisplayName(code string) string {
	if i, ok := r.index[code]; ok {
		return r.locales[i].Name
	}
	return code
}

// RouteKeys returns the registered route keys sorted by name.
func (r *Registry) RouteKeys() []RouteKey {
	out := make([]RouteKey, len(r.keys))
	copy(out, r.keys)
	return out
}

// Match picks the best supported locale for an Accept-Language header value.
// Preferences are ordered by q-value and compared on their primary subtag only.
// The default locale is returned when nothing matches.
func (r *Registry) Match(acceptLanguage string) string {
	for _, tag := range parsePreferences(acceptLanguage) {
		base, conf := tag.Base()
		// Only explicit subtags count; inferred bases (e.g. for "*") do not.
		if conf != language.Exact {
			continue
		}
		for i, candidate := range r.bases {
			if candidate == base {
				return r.locales[i].Code
			}
		}
	}
	return r.def
}

func parsePreferences(header string) []language.Tag {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if tags, _, err := language.ParseAcceptLanguage(header); err == nil {
		return tags
	}
	// Malformed headers are matched entry by entry in the order given.
	var tags []language.Tag
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if i := strings.IndexByte(part, ';'); i != -1 {
			part = strings.TrimSpace(part[:i])
		}
		if part == "" || part == "*" {
			continue
		}
		tag, err := language.Parse(part)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
