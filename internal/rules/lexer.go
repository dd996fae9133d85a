package rules

// isWordByte matches the word characters of a regexp \b boundary.
func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isIdentifier reports whether s is a non-empty run of word characters.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

// token is a maximal run of word bytes or of non-word bytes.
type token struct {
	text string
	word bool
}

// tokenize splits s into alternating word and non-word runs. Concatenating
// the token texts yields s again.
func tokenize(s string) []token {
	var out []token
	start := 0
	for start < len(s) {
		word := isWordByte(s[start])
		end := start + 1
		for end < len(s) && isWordByte(s[end]) == word {
			end++
		}
		out = append(out, token{text: s[start:end], word: word})
		start = end
	}
	return out
}

// splitTerminator separates a trailing "\n" or "\r\n" from a line.
func splitTerminator(line string) (body, term string) {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		if n > 1 && line[n-2] == '\r' {
			return line[:n-2], "\r\n"
		}
		return line[:n-1], "\n"
	}
	return line, ""
}

// trimLeadingSpaces strips ASCII spaces from the start of s.
func trimLeadingSpaces(s string) string {
	start := 0
	for start < len(s) && s[start] == ' ' {
		start++
	}
	return s[start:]
}

// trimSpaces strips ASCII spaces (only spaces) from both ends.
func trimSpaces(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}
