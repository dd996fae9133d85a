package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Statement is one rule, fact, constraint or query of a rule file, with
// comments removed and any existential declaration dropped.
type Statement struct {
	Line int // 0-based line where the statement starts
	Text string
}

// Clause is a statement reduced to the predicate names of its head and body.
type Clause struct {
	Head []string
	Body []string
}

// Edge records that Head depends on Body.
type Edge struct {
	Head string
	Body string
}

var keywords = map[string]bool{"not": true, "v": true}

// Statements splits content at top-level '.' and '?' terminators, outside
// quotes and brackets. '%' starts a comment running to end of line.
// Directives other than #exists are skipped.
func Statements(content string) ([]Statement, error) {
	var (
		out     []Statement
		b       strings.Builder
		depth   int
		quoted  bool
		line    int
		start   = -1
		comment bool
	)

	flush := func() error {
		text := strings.TrimSpace(b.String())
		b.Reset()
		defer func() { start = -1 }()
		if text == "" {
			return nil
		}
		if strings.HasPrefix(text, "#") {
			if !IsExistential(text) {
				return nil
			}
			closing := strings.IndexByte(text, '}')
			if closing < 0 {
				return &ParseError{Line: start, Msg: "unbalanced '{': missing '}'"}
			}
			text = strings.TrimLeft(text[closing+1:], " \t")
			if strings.HasPrefix(text, ":") && !strings.HasPrefix(text, ":-") {
				text = strings.TrimSpace(text[1:])
			}
		}
		out = append(out, Statement{Line: start, Text: text})
		return nil
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\n' {
			line++
			comment = false
		}
		if comment {
			continue
		}
		if quoted {
			b.WriteByte(c)
			if c == '"' {
				quoted = false
			}
			continue
		}
		switch c {
		case '%':
			comment = true
			continue
		case '"':
			quoted = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '.', '?':
			if depth == 0 {
				if err := flush(); err != nil {
					return nil, err
				}
				continue
			}
		}
		if start < 0 && c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			start = line
		}
		b.WriteByte(c)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// Predicates returns the names of the top-level atoms of a statement
// fragment in order of first appearance. Terms nested in argument lists,
// builtins (#name), negation keywords and operands of comparisons are not
// atoms.
func Predicates(text string) []string {
	seen := make(map[string]bool)
	var preds []string

	depth := 0
	quoted := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quoted {
			if c == '"' {
				quoted = false
			}
			continue
		}
		switch {
		case c == '"':
			quoted = true
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case isWordByte(c):
			end := i + 1
			for end < len(text) && isWordByte(text[end]) {
				end++
			}
			word := text[i:end]
			if depth == 0 && isAtomName(text, i, end) && !seen[word] {
				seen[word] = true
				preds = append(preds, word)
			}
			i = end - 1
		}
	}
	return preds
}

func isAtomName(text string, start, end int) bool {
	word := text[start:end]
	if word[0] < 'a' || word[0] > 'z' || keywords[word] {
		return false
	}
	if start > 0 && text[start-1] == '#' {
		return false
	}
	if isComparison(prevSignificant(text, start)) || isComparison(nextSignificant(text, end)) {
		return false
	}
	return true
}

func isComparison(c byte) bool {
	return c == '=' || c == '<' || c == '>' || c == '!'
}

func prevSignificant(s string, i int) byte {
	for i--; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func nextSignificant(s string, i int) byte {
	for ; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

// ParseClause splits a statement at its top-level ":-" (or ":~" for weak
// constraints) and extracts head and body predicates.
func ParseClause(stmt string) Clause {
	depth := 0
	quoted := false
	for i := 0; i+1 < len(stmt); i++ {
		c := stmt[i]
		if quoted {
			if c == '"' {
				quoted = false
			}
			continue
		}
		switch c {
		case '"':
			quoted = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && (stmt[i+1] == '-' || stmt[i+1] == '~') {
				return Clause{Head: Predicates(stmt[:i]), Body: Predicates(stmt[i+2:])}
			}
		}
	}
	return Clause{Head: Predicates(stmt)}
}

// Dependencies returns the sorted, deduplicated head->body predicate edges
// of every clause in content.
func Dependencies(content string) ([]Edge, error) {
	stmts, err := Statements(content)
	if err != nil {
		return nil, err
	}
	seen := make(map[Edge]bool)
	var edges []Edge
	for _, s := range stmts {
		cl := ParseClause(s.Text)
		for _, h := range cl.Head {
			for _, b := range cl.Body {
				e := Edge{Head: h, Body: b}
				if !seen[e] {
					seen[e] = true
					edges = append(edges, e)
				}
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Head != edges[j].Head {
			return edges[i].Head < edges[j].Head
		}
		return edges[i].Body < edges[j].Body
	})
	return edges, nil
}

// QueryPredicates returns the sorted predicates mentioned by a query file.
func QueryPredicates(content string) ([]string, error) {
	stmts, err := Statements(content)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var preds []string
	for _, s := range stmts {
		cl := ParseClause(s.Text)
		for _, p := range append(cl.Head, cl.Body...) {
			if !seen[p] {
				seen[p] = true
				preds = append(preds, p)
			}
		}
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("query mentions no predicate")
	}
	sort.Strings(preds)
	return preds, nil
}
