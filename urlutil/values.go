package urlutil

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type pair struct {
	key   string
	value string
}

// Values is an ordered sequence of query pairs.
// Unlike url.Values, several pairs may share a key and insertion order is kept.
// The zero value is an empty sequence ready to use.
//
// ParseQuery(v.String()) reproduces v, except that pairs with an empty key
// are written by String but dropped by ParseQuery.
type Values struct {
	pairs []pair
}

// NewValues returns an empty sequence.
func NewValues() *Values {
	return &Values{}
}

// ParseQuery decodes a query string, with or without the leading "?".
// Pairs with an empty key are skipped, so they do not survive a round trip
// through String.
func ParseQuery(query string) (*Values, error) {
	v := NewValues()

	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return v, nil
	}

	for _, chunk := range strings.Split(query, "&") {
		rawKey, rawValue, _ := strings.Cut(chunk, "=")
		if rawKey == "" {
			continue
		}

		key, err := unescape(rawKey)
		if err != nil {
			return nil, err
		}

		value, err := unescape(rawValue)
		if err != nil {
			return nil, err
		}

		v.Append(key, value)
	}

	return v, nil
}

// Append adds a new pair at the end.
func (v *Values) Append(key, value string) *Values {
	v.pairs = append(v.pairs, pair{key: key, value: value})
	return v
}

// Get returns the value of the first pair with key.
func (v *Values) Get(key string) (string, bool) {
	for _, p := range v.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// GetAll returns every value stored under key in insertion order.
func (v *Values) GetAll(key string) []string {
	var out []string
	for _, p := range v.pairs {
		if p.key == key {
			out = append(out, p.value)
		}
	}
	return out
}

// Set replaces the value of the first pair with key, or appends a new pair.
// Later pairs with the same key are left untouched.
func (v *Values) Set(key, value string) *Values {
	for i := range v.pairs {
		if v.pairs[i].key == key {
			v.pairs[i].value = value
			return v
		}
	}
	return v.Append(key, value)
}

// Delete removes all pairs with key.
func (v *Values) Delete(key string) *Values {
	kept := v.pairs[:0]
	for _, p := range v.pairs {
		if p.key != key {
			kept = append(kept, p)
		}
	}
	v.pairs = kept
	return v
}

// Has reports whether any pair uses key.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of pairs.
func (v *Values) Len() int {
	return len(v.pairs)
}

// Keys returns the key of every pair in order, duplicates included.
func (v *Values) Keys() []string {
	keys := make([]string, len(v.pairs))
	for i, p := range v.pairs {
		keys[i] = p.key
	}
	return keys
}

// Each calls fn for every pair in order.
func (v *Values) Each(fn func(key, value string)) {
	for _, p := range v.pairs {
		fn(p.key, p.value)
	}
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	out := &Values{pairs: make([]pair, len(v.pairs))}
	copy(out.pairs, v.pairs)
	return out
}

// String encodes the pairs as key=value joined by "&", each side escaped
// independently. It has no leading "?". Pairs with an empty key are written
// as "=value" and are lost when the result is parsed again.
func (v *Values) String() string {
	var b strings.Builder
	for i, p := range v.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(p.key))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(p.value))
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s leaving only letters, digits and
// - _ . ! ~ * ' ( ) unescaped. Spaces become %20, never "+".
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			buf = append(buf, c)
			continue
		}
		buf = append(buf, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(buf)
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// unescape decodes percent escapes. "+" is kept literally.
func unescape(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "invalid escape in %q", s), ErrInvalidURL)
	}
	return out, nil
}
