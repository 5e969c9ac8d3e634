package extract

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// FindJSON returns the first balanced top-level {...} span in raw that is valid JSON.
// Braces inside string literals are ignored, so prose, code fences and stray braces around
// the object do not confuse it. Unlike a first-brace to last-brace match it never joins two
// separate objects into one span.
func FindJSON(raw string) (span string, err error) {
	sawBalanced := false

	for start := strings.IndexByte(raw, '{'); start >= 0; {
		end := matchBrace(raw, start)
		if end < 0 {
			next := strings.IndexByte(raw[start+1:], '{')
			if next < 0 {
				break
			}
			start = start + 1 + next
			continue
		}

		candidate := raw[start : end+1]
		if json.Valid([]byte(candidate)) {
			span = candidate
			return span, err
		}
		sawBalanced = true

		next := strings.IndexByte(raw[end+1:], '{')
		if next < 0 {
			break
		}
		start = end + 1 + next
	}

	if sawBalanced {
		err = &ParseError{Raw: raw, Cause: errInvalidObject}
		return span, err
	}

	err = &ParseError{Raw: raw}
	return span, err
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) (end int) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
				return end
			}
		}
	}

	end = -1
	return end
}

//nolint:gochecknoglobals // sentinel
var errInvalidObject = errors.New("braced text found but none of it is valid JSON")
