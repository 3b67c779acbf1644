package patterns

import (
	"strings"
	"unicode"
)

// Normalize strips comments, empties single-quoted literals, lower-cases the
// text and collapses whitespace runs to one space. Block comments nest, as in
// PostgreSQL. Dollar-quoted bodies are kept since they usually hold SQL.
func Normalize(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	src := []rune(sql)
	n := len(src)
	space := false
	emit := func(r rune) {
		if unicode.IsSpace(r) {
			space = true
			return
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}

	for i := 0; i < n; i++ {
		r := src[i]
		switch {
		case r == '-' && i+1 < n && src[i+1] == '-':
			for i < n && src[i] != '\n' {
				i++
			}
			space = true
		case r == '/' && i+1 < n && src[i+1] == '*':
			depth := 1
			i += 2
			for i < n && depth > 0 {
				switch {
				case src[i] == '/' && i+1 < n && src[i+1] == '*':
					depth++
					i += 2
				case src[i] == '*' && i+1 < n && src[i+1] == '/':
					depth--
					i += 2
				default:
					i++
				}
			}
			i--
			space = true
		case r == '\'':
			emit('\'')
			i++
			for i < n {
				if src[i] == '\'' {
					if i+1 < n && src[i+1] == '\'' {
						i += 2
						continue
					}
					break
				}
				i++
			}
			emit('\'')
		default:
			emit(r)
		}
	}
	return b.String()
}
