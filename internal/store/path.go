package store

import (
	"fmt"
	"strings"
)

const forbiddenChars = ".#$[]"

// CleanPath trims surrounding slashes and rejects empty or illegal segments.
func CleanPath(path string) (string, error) {
	segs, err := Segments(path)
	if err != nil {
		return "", err
	}
	return strings.Join(segs, "/"), nil
}

func Segments(path string) ([]string, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	segs := strings.Split(trimmed, "/")
	for _, seg := range segs {
		if err := ValidKey(seg); err != nil {
			return nil, fmt.Errorf("%w: %q", err, path)
		}
	}
	return segs, nil
}

// ValidKey reports whether seg can be used as one path segment.
func ValidKey(seg string) error {
	if strings.TrimSpace(seg) == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	if strings.ContainsAny(seg, forbiddenChars) {
		return fmt.Errorf("%w: segment %q contains one of %s", ErrInvalidPath, seg, forbiddenChars)
	}
	return nil
}

func Join(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}

// related reports whether a write at one path is visible from the other.
func related(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
