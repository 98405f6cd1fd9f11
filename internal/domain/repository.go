package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidRepository is returned when a repository reference cannot be split into owner and name.
var ErrInvalidRepository = errors.New("invalid repository reference")

// Repository identifies a hosted repository.
type Repository struct {
	Host  string `json:"host"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Path returns the "owner/name" form, which is also the label used to log issues against the repository.
func (r Repository) Path() string {
	return r.Owner + "/" + r.Name
}

// URL returns the web URL of the repository.
func (r Repository) URL() string {
	return "https://" + r.Host + "/" + r.Path()
}

func (r Repository) String() string {
	return r.Path()
}

// ParseRepository accepts https, ssh (git@host:owner/name.git), ssh:// and bare owner/name references.
func ParseRepository(raw string) (Repository, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return Repository{}, fmt.Errorf("%w: empty reference", ErrInvalidRepository)
	}

	host := "github.com"
	path := ref
	switch {
	case strings.Contains(ref, "://"):
		u, err := url.Parse(ref)
		if err != nil {
			return Repository{}, fmt.Errorf("%w: %q: %v", ErrInvalidRepository, raw, err)
		}
		if u.Hostname() != "" {
			host = u.Hostname()
		}
		path = u.Path
	case strings.HasPrefix(ref, "git@"):
		rest := strings.TrimPrefix(ref, "git@")
		idx := strings.Index(rest, ":")
		if idx < 0 {
			return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, raw)
		}
		host, path = rest[:idx], rest[idx+1:]
	case strings.Count(ref, "/") >= 2 && strings.Contains(strings.SplitN(ref, "/", 2)[0], "."):
		// github.com/owner/name without a scheme
		parts := strings.SplitN(ref, "/", 2)
		host, path = parts[0], parts[1]
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, raw)
	}
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")
	if isDotSegment(owner) || isDotSegment(name) {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, raw)
	}

	return Repository{Host: host, Owner: owner, Name: name}, nil
}

// isDotSegment reports whether s cannot name an owner or a repository.
func isDotSegment(s string) bool {
	return s == "" || s == "." || s == ".."
}

// SplitRepositories splits a whitespace or newline separated list of repository references.
func SplitRepositories(raw string) []string {
	return strings.Fields(raw)
}
