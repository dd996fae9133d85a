package pipeline

import (
	"os"
	"path/filepath"

	"owldlv/internal/logging"
	"owldlv/internal/workspace"
)

// Scratch is the transient area of one run inside its workspace. Everything
// a strategy derives (skolemized rules, relevance output, filtered facts)
// lives here and goes away on Release.
type Scratch struct {
	ws  *workspace.Manager
	key workspace.Key
	dir string
}

// acquireScratch creates an empty scratch area with rules/ and facts/.
func acquireScratch(ws *workspace.Manager, key workspace.Key) (*Scratch, error) {
	dir, err := ws.EnsureClean(key, ws.Layout().ScratchFolder)
	if err != nil {
		return nil, err
	}
	s := &Scratch{ws: ws, key: key, dir: dir}
	for _, sub := range []string{s.Rules(), s.Facts()} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

// Dir is the scratch root.
func (s *Scratch) Dir() string { return s.dir }

// Rules holds rewritten rule files.
func (s *Scratch) Rules() string { return filepath.Join(s.dir, "rules") }

// Facts holds the filtered fact folder.
func (s *Scratch) Facts() string { return filepath.Join(s.dir, "facts") }

// Release deletes the scratch area. Safe to call more than once.
func (s *Scratch) Release() {
	if err := s.ws.Remove(s.key, s.ws.Layout().ScratchFolder); err != nil {
		logging.PipelineWarn("release scratch %s: %v", s.dir, err)
		return
	}
	logging.PipelineDebug("released scratch %s", s.dir)
}
