// Package shell builds command lines for POSIX shells. It quotes arguments
// and rewrites commands so that they run as another user or on another host.
package shell

import (
	"strings"
	"unicode/utf8"
)

// Quote escapes arg so that a POSIX shell parses it back into exactly one
// word equal to arg. Every character except ASCII letters, digits and the
// portable filename characters "-", "_", "." and "/" is escaped with a
// backslash, except for newlines which are wrapped in double quotes. The
// empty string is rendered as a pair of double quotes.
func Quote(arg string) string {
	if arg == "" {
		return `""`
	}

	var b strings.Builder
	b.Grow(len(arg))
	for i := 0; i < len(arg); {
		r, size := utf8.DecodeRuneInString(arg[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// Invalid UTF-8 is passed through byte by byte.
			b.WriteByte('\\')
			b.WriteByte(arg[i])
		case r == '\n':
			// A backslash before a newline is a line continuation, so the
			// newline is the one character that has to be quoted instead.
			b.WriteString("\"\n\"")
		default:
			if !isSafe(r) {
				b.WriteByte('\\')
			}
			b.WriteString(arg[i : i+size])
		}
		i += size
	}

	return b.String()
}

// Join quotes every argument and joins them with single spaces.
func Join(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}

func isSafe(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '/':
		return true
	}
	return false
}
