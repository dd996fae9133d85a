// Package relevance computes the predicates a query can depend on.
package relevance

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// PredicateSet is an unordered set of predicate names.
type PredicateSet map[string]struct{}

// NewPredicateSet returns a set holding names.
func NewPredicateSet(names ...string) PredicateSet {
	s := make(PredicateSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s PredicateSet) Add(name string) { s[name] = struct{}{} }
func (s PredicateSet) Len() int        { return len(s) }

// Contains reports membership.
func (s PredicateSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s PredicateSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s PredicateSet) String() string {
	return "{" + strings.Join(s.Sorted(), ",") + "}"
}

// ReadPredicateSet parses one predicate name per non-empty line.
// Surrounding whitespace is ignored and duplicates collapse.
func ReadPredicateSet(r io.Reader) (PredicateSet, error) {
	s := make(PredicateSet)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			s.Add(name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read predicate list: %w", err)
	}
	return s, nil
}
