package docstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned for paths with empty segments or forbidden
// characters. Match it with errors.Is.
var ErrInvalidPath = errors.New("docstore: invalid path")

// forbiddenKeyChars may not appear in any path segment or record key.
const forbiddenKeyChars = ".#$[]"

// Clean normalises a path: surrounding slashes are dropped and every segment
// is validated. The empty string is the root.
func Clean(p string) (string, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}
	for _, seg := range strings.Split(p, "/") {
		if err := validKey(seg); err != nil {
			return "", fmt.Errorf("%w %q: %v", ErrInvalidPath, p, err)
		}
	}
	return p, nil
}

// Join concatenates path elements, skipping empty ones.
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

func validKey(k string) error {
	if k == "" {
		return errors.New("empty segment")
	}
	if strings.ContainsAny(k, forbiddenKeyChars+"/") {
		return fmt.Errorf("segment %q contains one of %q or '/'", k, forbiddenKeyChars)
	}
	return nil
}

// isAncestor reports whether a is a strict ancestor of b.
func isAncestor(a, b string) bool {
	if a == "" {
		return b != ""
	}
	return strings.HasPrefix(b, a+"/")
}

// related reports whether a write at one path changes the value seen at the
// other: same node, or one contains the other.
func related(a, b string) bool {
	return a == b || isAncestor(a, b) || isAncestor(b, a)
}

func lastSegment(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
