package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// ExistsMarker tags an existential rule line. It must start the line.
const ExistsMarker = "#exists"

// ParseError reports malformed existential-rule syntax.
type ParseError struct {
	Line int // 0-based line index
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Msg)
}

// Atom is a predicate applied to an argument list, kept as source text.
type Atom struct {
	Predicate string
	Args      []string
}

func (a Atom) String() string {
	return a.Predicate + "(" + strings.Join(a.Args, ",") + ")"
}

// ExistentialRule is the structured form of one existential rule line.
type ExistentialRule struct {
	// Index is the absolute 0-based line position in its file.
	Index int

	// Existentials are the declared witness variables, in declaration order.
	Existentials []string

	// Head is the first atom of the rule text.
	Head Atom

	// Text is the rule after the declaration, without line terminator.
	Text string

	exists map[string]bool
}

// IsExistential reports whether a line carries the existential marker.
func IsExistential(line string) bool {
	return strings.HasPrefix(line, ExistsMarker)
}

// ParseExistential parses an existential rule line (terminator already
// removed). index is the line's absolute position in the file.
func ParseExistential(index int, line string) (*ExistentialRule, error) {
	fail := func(format string, args ...any) (*ExistentialRule, error) {
		return nil, &ParseError{Line: index, Msg: fmt.Sprintf(format, args...)}
	}

	if !IsExistential(line) {
		return fail("missing %s marker", ExistsMarker)
	}

	open := strings.IndexByte(line, '{')
	if open < 0 {
		return fail("missing '{' after %s", ExistsMarker)
	}
	if strings.TrimSpace(line[len(ExistsMarker):open]) != "" {
		return fail("unexpected text between %s and '{'", ExistsMarker)
	}
	closeRel := strings.IndexByte(line[open+1:], '}')
	if closeRel < 0 {
		return fail("unbalanced '{': missing '}'")
	}
	closing := open + 1 + closeRel
	declared := line[open+1 : closing]
	if strings.ContainsAny(declared, "{") {
		return fail("nested '{' in existential variable list")
	}

	r := &ExistentialRule{Index: index, exists: make(map[string]bool)}
	for _, raw := range strings.Split(declared, ",") {
		v := strings.TrimSpace(raw)
		if !isIdentifier(v) {
			if v == "" {
				return fail("empty existential variable in {%s}", declared)
			}
			return fail("invalid existential variable %q", v)
		}
		if r.exists[v] {
			continue
		}
		r.exists[v] = true
		r.Existentials = append(r.Existentials, v)
	}

	rest := strings.TrimLeft(line[closing+1:], " \t")
	if strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, ":-") {
		rest = rest[1:]
	}
	r.Text = rest

	head, err := parseHead(rest)
	if err != nil {
		return fail("%v", err)
	}
	r.Head = head
	return r, nil
}

// parseHead reads the first atom of a rule: predicate name followed by a
// parenthesized argument list, matched by depth. The argument list must
// appear before any ":-".
func parseHead(text string) (Atom, error) {
	open := strings.IndexByte(text, '(')
	if open < 0 {
		return Atom{}, fmt.Errorf("head has no argument list")
	}
	if arrow := strings.Index(text, ":-"); arrow >= 0 && arrow < open {
		return Atom{}, fmt.Errorf("head has no argument list")
	}
	pred := strings.TrimSpace(text[:open])
	if pred == "" {
		return Atom{}, fmt.Errorf("head atom has no predicate name")
	}

	depth := 0
	closing := -1
	for i := open; i < len(text) && closing < 0; i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closing = i
			}
		}
	}
	if closing < 0 {
		return Atom{}, fmt.Errorf("unbalanced '(' in head %s", pred)
	}

	return Atom{Predicate: pred, Args: splitArgs(text[open+1 : closing])}, nil
}

// splitArgs splits an argument list at top-level commas.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

// IsExistentialVar reports whether v is declared existential in this rule.
func (r *ExistentialRule) IsExistentialVar(v string) bool {
	return r.exists[v]
}

// Frontier returns the head arguments that are not existential, in head
// order. Repeated arguments are kept.
func (r *ExistentialRule) Frontier() []string {
	frontier := make([]string, 0, len(r.Head.Args))
	for _, arg := range r.Head.Args {
		if !r.exists[arg] {
			frontier = append(frontier, arg)
		}
	}
	return frontier
}

// SkolemName returns the function symbol for existential variable v.
func (r *ExistentialRule) SkolemName(v string) string {
	return "f" + strconv.Itoa(r.Index) + "_" + v
}

// SkolemTerm returns the skolem function applied to the frontier.
func (r *ExistentialRule) SkolemTerm(v string) string {
	return r.SkolemName(v) + "(" + strings.Join(r.Frontier(), ",") + ")"
}

// Rewrite returns the skolemized rule text: every whole-word occurrence of
// an existential variable is replaced by its skolem term, then surrounding
// spaces are stripped.
func (r *ExistentialRule) Rewrite() string {
	return trimSpaces(r.rewrite())
}

// RewriteLine is Rewrite for a line that ends in term. Only a line without a
// terminator loses its trailing spaces; otherwise they stay before term.
func (r *ExistentialRule) RewriteLine(term string) string {
	if term == "" {
		return r.Rewrite()
	}
	return trimLeadingSpaces(r.rewrite()) + term
}

func (r *ExistentialRule) rewrite() string {
	terms := make(map[string]string, len(r.Existentials))
	for _, v := range r.Existentials {
		terms[v] = r.SkolemTerm(v)
	}

	var b strings.Builder
	b.Grow(len(r.Text) + 16*len(terms))
	for _, tok := range tokenize(r.Text) {
		if tok.word {
			if term, ok := terms[tok.text]; ok {
				b.WriteString(term)
				continue
			}
		}
		b.WriteString(tok.text)
	}
	return b.String()
}
