package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	content := "% header. with a dot\n" +
		"a(X) :- b(X). c(\"x.y\").\n" +
		"#maxint=10.\n" +
		"#exists{Y}: d(X,Y) :-\n  a(X).\n" +
		"q(X)?"

	stmts, err := Statements(content)
	require.NoError(t, err)

	var texts []string
	var lines []int
	for _, s := range stmts {
		texts = append(texts, s.Text)
		lines = append(lines, s.Line)
	}
	assert.Equal(t, []string{
		"a(X) :- b(X)",
		"c(\"x.y\")",
		"d(X,Y) :-\n  a(X)",
		"q(X)",
	}, texts)
	assert.Equal(t, []int{1, 1, 3, 5}, lines)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"p(X), not q(X)", []string{"p", "q"}},
		{"p(X), X = c, d != X", []string{"p"}},
		{"p(f(X), g(Y)), r", []string{"p", "r"}},
		{"#count{Z : k(Z)} > 1, s(X)", []string{"s"}},
		{"a v b", []string{"a", "b"}},
		{"p(X), p(Y)", []string{"p"}},
		{"-p(X)", []string{"p"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Predicates(tt.text))
		})
	}
}

func TestParseClause(t *testing.T) {
	cl := ParseClause("a(X) v b(X) :- c(X), not d(X)")
	assert.Equal(t, []string{"a", "b"}, cl.Head)
	assert.Equal(t, []string{"c", "d"}, cl.Body)

	cl = ParseClause(":- c(X), d(X)")
	assert.Empty(t, cl.Head)
	assert.Equal(t, []string{"c", "d"}, cl.Body)

	cl = ParseClause("e(a)")
	assert.Equal(t, []string{"e"}, cl.Head)
	assert.Empty(t, cl.Body)
}

func TestDependencies(t *testing.T) {
	content := `% a(X) :- z(X).
a(X) :- b(X), not c(X).
#exists{Y}: d(X,Y) :- a(X), X = e.
f(X) :- g(X,h(Y)), #count{Z : k(Z)} > 1.
a(X) :- b(X).
`
	edges, err := Dependencies(content)
	require.NoError(t, err)

	want := []Edge{
		{Head: "a", Body: "b"},
		{Head: "a", Body: "c"},
		{Head: "d", Body: "a"},
		{Head: "f", Body: "g"},
	}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("Dependencies() mismatch (-want +got):\n%s", diff)
	}
}

func TestDependencies_SkolemizedRules(t *testing.T) {
	edges, err := Dependencies("p(X,f0_Y(X)) :- q(X).\n")
	require.NoError(t, err)
	assert.Equal(t, []Edge{{Head: "p", Body: "q"}}, edges)
}

func TestQueryPredicates(t *testing.T) {
	preds, err := QueryPredicates("r(X), q(X)?\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "r"}, preds)

	_, err = QueryPredicates("% nothing here\n")
	assert.Error(t, err)
}

func TestStatements_UnbalancedExistential(t *testing.T) {
	_, err := Statements("#exists{Y: p(X,Y) :- q(X).")
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
