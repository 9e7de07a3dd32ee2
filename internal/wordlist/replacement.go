package wordlist

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// CheckReplacement lexes a .NET replacement string against the compiled
// pattern re. Suspicious substitutions are reported as warnings. A '$' that
// starts no substitution is escaped, so the returned string substitutes the
// same text as repl but reads unambiguously. It never fails.
func CheckReplacement(re *regexp2.Regexp, repl string, line, col int, sink diag.Sink) string {
	var b strings.Builder
	b.Grow(len(repl) + 4)
	for i := 0; i < len(repl); {
		if repl[i] != '$' {
			b.WriteByte(repl[i])
			i++
			continue
		}
		if i+1 == len(repl) {
			diag.Verbosef(sink, line, col, "Escaped \"$\" at the end of replacement \"%s\"", repl)
			b.WriteString("$$")
			i++
			continue
		}
		next, size := utf8.DecodeRuneInString(repl[i+1:])
		switch {
		case next == '$':
			b.WriteString("$$")
			i += 2
			if i < len(repl) && (isDigit(repl[i]) || repl[i] == '{') {
				diag.Warnf(sink, line, col, "Replacement \"%s\": \"$$\" followed by \"%c\" is a literal \"$\", not a substitution", repl, repl[i])
			}
		case isDigit(repl[i+1]):
			j := i + 1
			for j < len(repl) && isDigit(repl[j]) {
				j++
			}
			if num := repl[i+1 : j]; !hasGroupNumber(re, num) {
				diag.Warnf(sink, line, col, "Replacement \"%s\": group %s does not exist", repl, num)
			}
			b.WriteString(repl[i:j])
			i = j
		case next == '{':
			end := strings.IndexByte(repl[i+2:], '}')
			if end < 0 {
				diag.Verbosef(sink, line, col, "Escaped unterminated \"${\" in replacement \"%s\"", repl)
				b.WriteString("$$")
				i++
				continue
			}
			name := repl[i+2 : i+2+end]
			if !hasGroup(re, name) {
				diag.Warnf(sink, line, col, "Replacement \"%s\": group \"%s\" does not exist", repl, name)
			}
			b.WriteString(repl[i : i+3+end])
			i += 3 + end
		case next == '&' || next == '+':
			b.WriteString(repl[i : i+2])
			i += 2
		case next == '`' || next == '\'' || next == '_':
			diag.Warnf(sink, line, col, "Replacement \"%s\": \"$%c\" substitutes input text outside the match", repl, next)
			b.WriteString(repl[i : i+2])
			i += 2
		case unicode.IsLetter(next):
			j := i + 1 + size
			for j < len(repl) {
				r, n := utf8.DecodeRuneInString(repl[j:])
				if !isWordRune(r) {
					break
				}
				j += n
			}
			name := repl[i+1 : j]
			if hasGroup(re, name) {
				diag.Warnf(sink, line, col, "Replacement \"%s\": \"$%s\" is literal text, use \"${%s}\" to substitute group \"%s\"", repl, name, name, name)
			} else {
				diag.Warnf(sink, line, col, "Replacement \"%s\": \"$%s\" is literal text and group \"%s\" does not exist", repl, name, name)
			}
			b.WriteString("$$")
			i++
		default:
			diag.Verbosef(sink, line, col, "Escaped \"$\" at offset %d of replacement \"%s\"", i, repl)
			b.WriteString("$$")
			i++
		}
	}
	return b.String()
}

func hasGroup(re *regexp2.Regexp, name string) bool {
	if name != "" && strings.Trim(name, "0123456789") == "" {
		return hasGroupNumber(re, name)
	}
	return re.GroupNumberFromName(name) >= 0
}

func hasGroupNumber(re *regexp2.Regexp, num string) bool {
	n, err := strconv.Atoi(num)
	if err != nil {
		return false
	}
	for _, g := range re.GetGroupNumbers() {
		if g == n {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
