package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a single answer, in bytes.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize.
const EnvMaxInputSize = "FIREBREAK_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer cleans one console line before it reaches a stage.
type Sanitizer struct {
	MaxSize int
}

// NewSanitizer returns a sanitizer honouring EnvMaxInputSize.
func NewSanitizer() Sanitizer {
	return Sanitizer{MaxSize: maxInputSize()}
}

// Clean trims surrounding whitespace, rejects oversized or invalid UTF-8
// input and strips control characters other than tab.
// Oversized input is rejected rather than truncated so the recorded answer is
// always exactly what the user typed.
func (s Sanitizer) Clean(input string) (string, error) {
	input = strings.TrimSpace(input)

	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// unsafeControl matches ANSI escapes, NUL, BEL and friends.
// Answers are single lines, so only tab survives.
func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
