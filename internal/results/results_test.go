package results

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"owldlv/internal/failure"
	"owldlv/internal/solver"
)

type recordingExec struct {
	cmds   []solver.Command
	result *solver.ExecutionResult
}

func (r *recordingExec) Execute(_ context.Context, cmd solver.Command) (*solver.ExecutionResult, error) {
	r.cmds = append(r.cmds, cmd)
	if r.result != nil {
		return r.result, nil
	}
	return &solver.ExecutionResult{Success: true}, nil
}

// syncBuffer is a bytes.Buffer safe for the follower goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShow_LaunchesViewer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, os.WriteFile(path, []byte("{p(a)}\n"), 0644))

	exec := &recordingExec{}
	require.NoError(t, Show(context.Background(), exec, "gedit", path, nil))
	require.Len(t, exec.cmds, 1)
	assert.Equal(t, "gedit", exec.cmds[0].Binary)
	assert.Equal(t, []string{path}, exec.cmds[0].Arguments)
}

func TestShow_PrintsWithoutViewer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, os.WriteFile(path, []byte("{p(a)}\n"), 0644))

	var out bytes.Buffer
	exec := &recordingExec{}
	require.NoError(t, Show(context.Background(), exec, "", path, &out))
	assert.Equal(t, "{p(a)}\n", out.String())
	assert.Empty(t, exec.cmds)
}

func TestShow_MissingResult(t *testing.T) {
	err := Show(context.Background(), &recordingExec{}, "gedit", filepath.Join(t.TempDir(), "result.txt"), nil)
	require.Error(t, err)
	assert.Equal(t, failure.KindInput, failure.KindOf(err))
}

func TestShow_ViewerFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	exec := &recordingExec{result: &solver.ExecutionResult{Success: false, ExitCode: -1, Error: "executable file not found"}}
	err := Show(context.Background(), exec, "gedit", path, nil)
	require.Error(t, err)
	assert.Equal(t, failure.KindExternal, failure.KindOf(err))
}

func TestFollower_PrintsReplacedResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "result.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0644))

	var out syncBuffer
	f, err := NewFollower(path, &out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.Start(ctx))
	assert.Equal(t, 1, f.Printed())

	tmp := filepath.Join(dir, ".result.txt.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("second\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "second\n")
	}, 5*time.Second, 20*time.Millisecond)

	f.Stop()
	assert.Contains(t, out.String(), "first\n")
	assert.GreaterOrEqual(t, f.Printed(), 2)
}

func TestFollower_FollowReturnsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f, err := NewFollower(filepath.Join(t.TempDir(), "tmp", "result.txt"), &syncBuffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Follow(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
	assert.Equal(t, 0, f.Printed())
}
