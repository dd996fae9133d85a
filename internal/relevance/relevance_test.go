package relevance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owldlv/internal/config"
	"owldlv/internal/failure"
	"owldlv/internal/solver"
)

// TestHelperProcess isn't a real test. It's used as a helper process
// standing in for the external relevance tool.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	for _, a := range args[1:] {
		if strings.HasSuffix(a, "fail.txt") {
			fmt.Fprintln(os.Stderr, "cannot read query")
			os.Exit(3)
		}
	}
	fmt.Println("ignored stdout")
	fmt.Fprint(os.Stderr, "q\np\n\n  r  \nq\n")
}

type helperExecutor struct{}

func (helperExecutor) Execute(ctx context.Context, cmd solver.Command) (*solver.ExecutionResult, error) {
	cmd.Arguments = append([]string{"-test.run=TestHelperProcess", "--", filepath.Base(cmd.Binary)}, cmd.Arguments...)
	cmd.Binary = os.Args[0]
	cmd.Environment = append(cmd.Environment, "GO_WANT_HELPER_PROCESS=1")
	return solver.NewDirectExecutor().Execute(ctx, cmd)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPredicateSet(t *testing.T) {
	s := NewPredicateSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	assert.Equal(t, "{a,b}", s.String())
}

func TestReadPredicateSet(t *testing.T) {
	s, err := ReadPredicateSet(strings.NewReader("p\n\n  q \r\np\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, s.Sorted())
}

func TestExternalAnalyzer(t *testing.T) {
	dir := t.TempDir()
	a := &ExternalAnalyzer{
		Exec:        helperExecutor{},
		Binary:      "dlvEx",
		Args:        []string{"-relevance"},
		ScratchPath: filepath.Join(dir, "relevant.txt"),
	}

	set, err := a.Relevant(context.Background(), []string{"r1.rul", "r2.rul"}, "query.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q", "r"}, set.Sorted())

	scratch, err := os.ReadFile(a.ScratchPath)
	require.NoError(t, err)
	assert.Equal(t, "q\np\n\n  r  \nq\n", string(scratch))
}

func TestExternalAnalyzer_FailureIsExternal(t *testing.T) {
	a := &ExternalAnalyzer{
		Exec:        helperExecutor{},
		Binary:      "dlvEx",
		ScratchPath: filepath.Join(t.TempDir(), "relevant.txt"),
	}

	_, err := a.Relevant(context.Background(), []string{"r.rul"}, "fail.txt")
	require.Error(t, err)
	assert.Equal(t, failure.KindExternal, failure.KindOf(err))

	var exitErr *solver.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestMangleAnalyzer(t *testing.T) {
	dir := t.TempDir()
	r1 := writeFile(t, dir, "a.rul", "p(X) :- q(X), r(X).\nq(X) :- s(X).\n")
	r2 := writeFile(t, dir, "b.rul", "u(X) :- v(X).\n#exists{Y}: w(X,Y) :- p(X).\n")
	query := writeFile(t, dir, "query.txt", "p(X)?\n")

	set, err := NewMangleAnalyzer().Relevant(context.Background(), []string{r1, r2}, query)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"p", "q", "r", "s"}, set.Sorted()); diff != "" {
		t.Errorf("Relevant() mismatch (-want +got):\n%s", diff)
	}
}

func TestMangleAnalyzer_Cycle(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "a.rul", "a(X) :- b(X).\nb(X) :- a(X), c(X).\n")
	query := writeFile(t, dir, "query.txt", "a(X)?")

	set, err := NewMangleAnalyzer().Relevant(context.Background(), []string{rules}, query)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, set.Sorted())
}

func TestMangleAnalyzer_SkolemizedRules(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "a.rul", "p(X,f0_Y(X)) :- q(X).\n")
	query := writeFile(t, dir, "query.txt", "p(X,Y)?")

	set, err := NewMangleAnalyzer().Relevant(context.Background(), []string{rules}, query)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, set.Sorted())
}

func TestMangleAnalyzer_MissingQuery(t *testing.T) {
	_, err := NewMangleAnalyzer().Relevant(context.Background(), nil, filepath.Join(t.TempDir(), "query.txt"))
	require.Error(t, err)
	assert.Equal(t, failure.KindInput, failure.KindOf(err))
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasePath = "/opt/owldlv"

	a, err := New(cfg, helperExecutor{}, "/ws/scratch")
	require.NoError(t, err)
	ext, ok := a.(*ExternalAnalyzer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/opt/owldlv", "solvers", "dlvEx"), ext.Binary)
	assert.Equal(t, filepath.Join("/ws/scratch", "relevant.txt"), ext.ScratchPath)

	cfg.Relevance.Engine = config.RelevanceMangle
	a, err = New(cfg, helperExecutor{}, "/ws/scratch")
	require.NoError(t, err)
	assert.IsType(t, &MangleAnalyzer{}, a)

	cfg.Relevance.Engine = "oracle"
	_, err = New(cfg, helperExecutor{}, "/ws/scratch")
	assert.Equal(t, failure.KindConfig, failure.KindOf(err))
}
