// Package storage adapts the file storage collaborator. The engine only ever
// asks it to turn a storage-relative path into a fetchable URL.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"carelearn/internal/domain"
	contentSvc "carelearn/internal/domain/services/content"
)

// PublicURLResolver serves media from a public base URL (CDN or bucket
// website endpoint) under which stored paths are exposed unchanged.
type PublicURLResolver struct {
	base *url.URL
}

// NewPublicURLResolver parses baseURL once; it must be absolute.
func NewPublicURLResolver(baseURL string) (contentSvc.StorageResolver, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse storage base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("storage base url %q must be absolute", baseURL)
	}
	return &PublicURLResolver{base: u}, nil
}

// Resolve joins path onto the base URL. Paths that are absolute URLs or walk
// out of the storage root are rejected.
func (r *PublicURLResolver) Resolve(ctx context.Context, p string) (string, error) {
	if err := ValidatePath(p); err != nil {
		return "", err
	}

	out := *r.base
	out.Path = r.base.Path + "/" + strings.TrimPrefix(path.Clean("/"+p), "/")
	return out.String(), nil
}

// ValidatePath reports whether p is a usable storage-relative path.
func ValidatePath(p string) error {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return fmt.Errorf("%w: storage path is empty", domain.ErrValidation)
	}
	if strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, "//") {
		return fmt.Errorf("%w: storage path %q must be relative", domain.ErrValidation, p)
	}
	for _, segment := range strings.Split(strings.ReplaceAll(trimmed, "\\", "/"), "/") {
		if segment == ".." {
			return fmt.Errorf("%w: storage path %q escapes the storage root", domain.ErrValidation, p)
		}
	}
	return nil
}
