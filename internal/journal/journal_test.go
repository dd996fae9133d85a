package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "tmp", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestJournal_Lifecycle(t *testing.T) {
	j := openTest(t)
	id := NewRunID()

	require.NoError(t, j.Begin(Record{
		ID: id, Mode: "obqa", Strategy: "skdlv",
		TBox: "/kb/tbox", ABox: "/kb/abox", Query: "/kb/q.txt",
		ResultPath: "/base/solvers/tmp/result.txt", State: "idle",
	}))
	for _, s := range []string{"importing", "staged", "running"} {
		require.NoError(t, j.Transition(id, s))
	}
	require.NoError(t, j.Finish(id, "completed", "", ""))

	r, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "completed", r.State)
	assert.Equal(t, "skdlv", r.Strategy)
	assert.Equal(t, "/kb/q.txt", r.Query)
	assert.False(t, r.StartedAt.IsZero())
	assert.False(t, r.FinishedAt.IsZero())
	assert.Empty(t, r.Error)

	trs, err := j.Transitions(id)
	require.NoError(t, err)
	var states []string
	for _, tr := range trs {
		states = append(states, tr.State)
	}
	assert.Equal(t, []string{"idle", "importing", "staged", "running", "completed"}, states)
}

func TestJournal_FailedRun(t *testing.T) {
	j := openTest(t)
	id := NewRunID()
	require.NoError(t, j.Begin(Record{ID: id, Mode: "obqa", Strategy: "pchase", State: "idle"}))
	require.NoError(t, j.Finish(id, "failed", "external", "dlvEx exited with status 1"))

	r, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "failed", r.State)
	assert.Equal(t, "external", r.ErrorKind)
	assert.Equal(t, "dlvEx exited with status 1", r.Error)
}

func TestJournal_UnknownRun(t *testing.T) {
	j := openTest(t)
	_, err := j.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, j.Transition("missing", "running"), ErrNotFound)
}

func TestJournal_RecentNewestFirst(t *testing.T) {
	j := openTest(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id := NewRunID()
		ids = append(ids, id)
		require.NoError(t, j.Begin(Record{ID: id, Mode: "asp", State: "idle", StartedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
	assert.Equal(t, base.Add(2*time.Minute), recent[0].StartedAt)
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	id := NewRunID()
	require.NoError(t, j.Begin(Record{ID: id, Mode: "obqa", State: "idle"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	r, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "idle", r.State)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Begin(Record{ID: "x"}))
	assert.NoError(t, Discard.Transition("x", "running"))
	assert.NoError(t, Discard.Finish("x", "failed", "parse", "boom"))
}

func TestLazy_OpensOnFirstBegin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "runs.db")
	l := NewLazy(path)
	assert.False(t, l.Opened())
	assert.NoFileExists(t, path)
	require.NoError(t, l.Close())

	id := NewRunID()
	require.NoError(t, l.Begin(Record{ID: id, Mode: "obqa", State: "idle", StartedAt: time.Now()}))
	assert.True(t, l.Opened())
	require.NoError(t, l.Transition(id, "running"))
	require.NoError(t, l.Finish(id, "completed", "", ""))
	require.NoError(t, l.Close())

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()
	rec, err := j.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.State)
}
