package sanitizer

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

//go:embed config/allowlist.yaml
var configFiles embed.FS

// HTMLSanitizer filters HTML to an explicit allow-list of element names.
//
// Removed elements are unwrapped (their text survives) except script and
// style, whose contents are dropped too. Attributes are removed apart from
// href on links and src/alt on images, which must use http(s), mailto or a
// relative URL. Output is stable: sanitizing it again returns it unchanged.
//
// Thread-safe for concurrent use. Policies are built once per distinct
// allow-list and cached.
type HTMLSanitizer struct {
	defaults []string

	mu       sync.RWMutex
	policies map[string]*bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer whose default allow-list is the
// embedded content element list.
func NewHTMLSanitizer() (*HTMLSanitizer, error) {
	data, err := configFiles.ReadFile("config/allowlist.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list: %w", err)
	}

	var file struct {
		Elements []string `yaml:"elements"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allow-list: %w", err)
	}

	return NewHTMLSanitizerWithDefaults(file.Elements), nil
}

// NewHTMLSanitizerWithDefaults creates a sanitizer with the given default allow-list.
func NewHTMLSanitizerWithDefaults(defaults []string) *HTMLSanitizer {
	return &HTMLSanitizer{
		defaults: normalize(defaults),
		policies: make(map[string]*bluemonday.Policy),
	}
}

// DefaultAllowList returns a copy of the default element names.
func (s *HTMLSanitizer) DefaultAllowList() []string {
	out := make([]string, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// Sanitize keeps only elements named in allow. An empty allow strips every tag.
func (s *HTMLSanitizer) Sanitize(html string, allow []string) string {
	if html == "" {
		return ""
	}
	return s.policy(normalize(allow)).Sanitize(html)
}

// SanitizeDefault sanitizes with the default allow-list.
func (s *HTMLSanitizer) SanitizeDefault(html string) string {
	return s.Sanitize(html, s.defaults)
}

func (s *HTMLSanitizer) policy(allow []string) *bluemonday.Policy {
	key := strings.Join(allow, ",")

	s.mu.RLock()
	p, ok := s.policies[key]
	s.mu.RUnlock()
	if ok {
		return p
	}

	p = buildPolicy(allow)

	s.mu.Lock()
	if existing, ok := s.policies[key]; ok {
		p = existing
	} else {
		s.policies[key] = p
	}
	s.mu.Unlock()

	return p
}

// keptContent are elements bluemonday drops with their text by default. Only
// script and style contents are discarded here; these are unwrapped instead.
var keptContent = []string{
	"frame", "frameset", "iframe", "noembed", "noframes",
	"noscript", "nostyle", "object", "title",
}

func buildPolicy(allow []string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElementsContent(keptContent...)
	if len(allow) == 0 {
		return p
	}

	p.AllowElements(allow...)
	for _, name := range allow {
		switch name {
		case "a":
			p.AllowAttrs("href").OnElements("a")
			p.RequireNoFollowOnLinks(true)
		case "img":
			p.AllowAttrs("src", "alt").OnElements("img")
		}
	}
	p.AllowStandardURLs()

	return p
}

// neverAllowed elements are dropped from every allow-list.
var neverAllowed = map[string]struct{}{
	"script": {},
	"style":  {},
}

// normalize lower-cases, de-duplicates and sorts element names so equivalent
// allow-lists share a cached policy.
func normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		if _, ok := neverAllowed[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
