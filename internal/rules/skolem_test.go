package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owldlv/internal/failure"
)

func TestSkolemizeLines_FirstLine(t *testing.T) {
	out, err := SkolemizeLines([]string{"#exists{Y}: p(X,Y) :- q(X).\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p(X,f0_Y(X)) :- q(X).\n"}, out)
}

func TestSkolemizeLines_TrailingSpacesBeforeTerminator(t *testing.T) {
	in := []string{
		"#exists{Y}:   p(X,Y) :- q(X).  \n",
		"#exists{Y}: p(X,Y) :- q(X).   ",
	}
	want := []string{
		"p(X,f0_Y(X)) :- q(X).  \n",
		"p(X,f1_Y(X)) :- q(X).",
	}

	out, err := SkolemizeLines(in)
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestSkolemizeLines_IndexCountsEveryLine(t *testing.T) {
	in := []string{
		"% plain comment\n",
		"\n",
		"a(X) :- b(X).\r\n",
		"#exists{Z}: r(X,Z) :- s(X).\r\n",
		"#exists{W} t(W,X) :- s(X).",
	}
	want := []string{
		"% plain comment\n",
		"\n",
		"a(X) :- b(X).\r\n",
		"r(X,f3_Z(X)) :- s(X).\r\n",
		"t(f4_W(X),X) :- s(X).",
	}

	out, err := SkolemizeLines(in)
	require.NoError(t, err)
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("SkolemizeLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestSkolemize_PlainTextUnchanged(t *testing.T) {
	in := "a(X) :- b(X).\n  c(X) :- d(X).   \n\n% exists{Y}\nq(X)?"
	out, err := Skolemize(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSkolemize_LineCountPreserved(t *testing.T) {
	in := "#exists{Y}: p(X,Y) :- q(X).\nq(a).\n#exists{Z}: s(Z) :- p(X,Y).\n"
	out, err := Skolemize(in)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(out, "\n"))
	assert.Len(t, SplitLines(out), len(SplitLines(in)))
}

func TestSkolemize_Deterministic(t *testing.T) {
	in := "#exists{Y,Z}: p(X,Y,Z) :- q(X).\n#exists{Y}: r(Y,X) :- p(X,A,B).\n"
	first, err := Skolemize(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Skolemize(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSkolemize_ParseErrorReportsLine(t *testing.T) {
	_, err := Skolemize("a(X) :- b(X).\n#exists{Y: p(X,Y) :- q(X).\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a\n", "\n"}, SplitLines("a\n\n"))
}

func TestSkolemizeDir(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.rul"), []byte("#exists{Y}: p(X,Y) :- q(X).\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.rul"), []byte("q(X) :- s(X).\n"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(src, "nested"), 0755))

	written, err := SkolemizeDir(src, dst)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dst, "a.rul"), filepath.Join(dst, "b.rul")}, written)

	got, err := os.ReadFile(filepath.Join(dst, "b.rul"))
	require.NoError(t, err)
	assert.Equal(t, "p(X,f0_Y(X)) :- q(X).\n", string(got))

	got, err = os.ReadFile(filepath.Join(dst, "a.rul"))
	require.NoError(t, err)
	assert.Equal(t, "q(X) :- s(X).\n", string(got))
}

func TestSkolemizeFile_ParseErrorKind(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.rul")
	require.NoError(t, os.WriteFile(src, []byte("#exists{}: p(X) :- q(X).\n"), 0644))

	err := SkolemizeFile(src, filepath.Join(dir, "out.rul"))
	require.Error(t, err)
	assert.Equal(t, failure.KindParse, failure.KindOf(err))
	assert.NoFileExists(t, filepath.Join(dir, "out.rul"))
}
