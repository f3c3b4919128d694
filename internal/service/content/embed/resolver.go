package embed

import (
	"embed"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/hosts.yaml
var configFiles embed.FS

// HostPattern maps one recognised URL shape to its player template.
type HostPattern struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
}

type hostsFile struct {
	Hosts []HostPattern `yaml:"hosts"`
}

type compiledHost struct {
	name     string
	re       *regexp.Regexp
	template string
}

// Resolver turns raw video links into embeddable player URLs.
// Safe for concurrent use; it holds no mutable state after construction.
type Resolver struct {
	hosts        []compiledHost
	allowedHosts map[string]struct{}
}

// NewDefaultResolver builds a resolver from the embedded host list.
func NewDefaultResolver() (*Resolver, error) {
	data, err := configFiles.ReadFile("config/hosts.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embed hosts: %w", err)
	}

	var file hostsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embed hosts: %w", err)
	}

	return NewResolver(file.Hosts)
}

// NewResolver compiles the given patterns. Each template must be an https URL
// containing {id}; its host becomes an allowed iframe host.
func NewResolver(patterns []HostPattern) (*Resolver, error) {
	r := &Resolver{allowedHosts: make(map[string]struct{})}

	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("embed host %q: invalid pattern: %w", p.Name, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("embed host %q: pattern has no capture group", p.Name)
		}
		if !strings.Contains(p.Template, "{id}") {
			return nil, fmt.Errorf("embed host %q: template has no {id} placeholder", p.Name)
		}

		tmpl, err := url.Parse(strings.ReplaceAll(p.Template, "{id}", "x"))
		if err != nil || tmpl.Scheme != "https" || tmpl.Host == "" {
			return nil, fmt.Errorf("embed host %q: template must be an absolute https URL", p.Name)
		}

		r.hosts = append(r.hosts, compiledHost{name: p.Name, re: re, template: p.Template})
		r.allowedHosts[strings.ToLower(tmpl.Host)] = struct{}{}
	}

	return r, nil
}

// Resolve returns the player URL for rawURL. ok is false when no pattern
// matches, which callers treat as "show a plain link".
func (r *Resolver) Resolve(rawURL string) (string, bool) {
	candidate := strings.TrimSpace(rawURL)
	if candidate == "" {
		return "", false
	}

	for _, h := range r.hosts {
		m := h.re.FindStringSubmatch(candidate)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		return strings.ReplaceAll(h.template, "{id}", m[1]), true
	}
	return "", false
}

// AllowedEmbedHost reports whether embedURL points at one of the player hosts
// this resolver produces. Only such URLs may be placed in an iframe.
func (r *Resolver) AllowedEmbedHost(embedURL string) bool {
	u, err := url.Parse(embedURL)
	if err != nil || u.Scheme != "https" {
		return false
	}
	_, ok := r.allowedHosts[strings.ToLower(u.Host)]
	return ok
}
