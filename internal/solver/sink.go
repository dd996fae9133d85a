package solver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink receives a solver's standard output.
//
// Open is called before the process starts. Exactly one of Commit or Abort
// follows: Commit after a successful run, Abort otherwise.
type Sink interface {
	Open() (io.Writer, error)
	Commit() error
	Abort() error
}

// FileSink writes solver output verbatim to a result file, overwriting any
// previous result. Output goes to a temporary file next to the target and is
// renamed into place on Commit, so a reader never sees a partial result.
// Abort removes both the temporary file and any previous result.
type FileSink struct {
	path   string
	mirror io.Writer
	tmp    *os.File
}

// NewFileSink creates a sink for path. A non-nil mirror receives a copy of
// everything written.
func NewFileSink(path string, mirror io.Writer) *FileSink {
	return &FileSink{path: path, mirror: mirror}
}

// Path returns the result artifact path.
func (s *FileSink) Path() string { return s.path }

// Open creates the temporary file.
func (s *FileSink) Open() (io.Writer, error) {
	if s.tmp != nil {
		return nil, errors.New("file sink already open")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("create result folder: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create result file: %w", err)
	}
	s.tmp = tmp
	if s.mirror != nil {
		return io.MultiWriter(tmp, s.mirror), nil
	}
	return tmp, nil
}

// Commit renames the temporary file over the result path.
func (s *FileSink) Commit() error {
	if s.tmp == nil {
		return errors.New("file sink not open")
	}
	tmp := s.tmp
	s.tmp = nil
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close result file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish result file: %w", err)
	}
	return nil
}

// Abort discards the temporary file and removes any previous result.
func (s *FileSink) Abort() error {
	if s.tmp != nil {
		s.tmp.Close()
		os.Remove(s.tmp.Name())
		s.tmp = nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale result: %w", err)
	}
	return nil
}

// StreamSink forwards output to a writer with nothing to commit.
type StreamSink struct {
	W io.Writer
}

func (s StreamSink) Open() (io.Writer, error) { return s.W, nil }
func (s StreamSink) Commit() error            { return nil }
func (s StreamSink) Abort() error             { return nil }
