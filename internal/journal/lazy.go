package journal

import "sync"

// Lazy is a Recorder that opens its database on the first Begin, so runs
// rejected before they start leave nothing on disk.
type Lazy struct {
	path string

	mu  sync.Mutex
	j   *Journal
	err error
}

// NewLazy returns a Lazy recorder for path.
func NewLazy(path string) *Lazy {
	return &Lazy{path: path}
}

func (l *Lazy) open() (*Journal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.j == nil && l.err == nil {
		l.j, l.err = Open(l.path)
	}
	return l.j, l.err
}

// Opened reports whether the database has been opened.
func (l *Lazy) Opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.j != nil
}

func (l *Lazy) Begin(r Record) error {
	j, err := l.open()
	if err != nil {
		return err
	}
	return j.Begin(r)
}

func (l *Lazy) Transition(id, state string) error {
	j, err := l.open()
	if err != nil {
		return err
	}
	return j.Transition(id, state)
}

func (l *Lazy) Finish(id, state, errorKind, errMsg string) error {
	j, err := l.open()
	if err != nil {
		return err
	}
	return j.Finish(id, state, errorKind, errMsg)
}

// Close closes the database if it was opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.j == nil {
		return nil
	}
	err := l.j.Close()
	l.j = nil
	return err
}
