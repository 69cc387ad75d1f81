package surface

import (
	"fmt"
	"strings"
	"unicode"
)

const rawIdentPrefix = "r#"

func splitPath(path, separator string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}

	segments := strings.Split(path, separator)
	for i, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: empty segment at position %d", ErrMalformedPath, i)
		}
		if !isIdentifier(segment) {
			return nil, fmt.Errorf("%w: invalid identifier %q", ErrMalformedPath, segment)
		}
	}
	return segments, nil
}

// isIdentifier accepts a letter or underscore followed by letters, digits and
// underscores. Raw identifiers (r#type) are accepted.
func isIdentifier(text string) bool {
	text = strings.TrimPrefix(text, rawIdentPrefix)
	if text == "" {
		return false
	}

	for i, r := range text {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
