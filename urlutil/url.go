// Package urlutil provides a small URL parser and builder for http and https
// URLs whose query is an ordered sequence of pairs.
package urlutil

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidURL marks input that is not an absolute http(s) URL or carries a
// malformed escape.
var ErrInvalidURL = errors.New("invalid URL")

var urlPattern = regexp.MustCompile(`^(https?):\/\/([^:/\s?#]+)(?::(\d+))?([^?#]*)(?:\?([^#]*))?(?:#(.*))?$`)

// URL is a parsed absolute http or https URL.
type URL struct {
	// Scheme is "http" or "https".
	Scheme   string
	Hostname string
	// Port is empty when the URL carries none.
	Port string
	// Path is "/" when the URL carries none.
	Path string
	// Fragment excludes the leading "#".
	Fragment string
	Query    *Values
}

// Parse parses an absolute http or https URL.
func Parse(rawURL string) (*URL, error) {
	m := urlPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, errors.Mark(errors.Newf("invalid URL: %s", rawURL), ErrInvalidURL)
	}

	query, err := ParseQuery(m[5])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid query in %s", rawURL)
	}

	path := m[4]
	if path == "" {
		path = "/"
	}

	return &URL{
		Scheme:   m[1],
		Hostname: m[2],
		Port:     m[3],
		Path:     path,
		Fragment: m[6],
		Query:    query,
	}, nil
}

// ParseWithBase resolves ref against base and parses the result.
// An absolute http(s) ref is parsed as is. Otherwise ref is appended to base
// with exactly one "/" between them.
func ParseWithBase(ref, base string) (*URL, error) {
	if base == "" || IsAbsolute(ref) {
		return Parse(ref)
	}
	return Parse(Join(base, ref))
}

// IsAbsolute reports whether s starts with http:// or https://.
func IsAbsolute(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Join concatenates base and path with exactly one "/" at the join point.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Host returns hostname[:port].
func (u *URL) Host() string {
	if u.Port != "" {
		return u.Hostname + ":" + u.Port
	}
	return u.Hostname
}

// Origin returns scheme://host.
func (u *URL) Origin() string {
	return u.Scheme + "://" + u.Host()
}

// Search returns the encoded query with a leading "?" or "" when empty.
func (u *URL) Search() string {
	if u.Query == nil || u.Query.Len() == 0 {
		return ""
	}
	return "?" + u.Query.String()
}

// String reassembles the URL.
func (u *URL) String() string {
	s := u.Origin() + u.Path + u.Search()
	if u.Fragment != "" {
		s += "#" + u.Fragment
	}
	return s
}
