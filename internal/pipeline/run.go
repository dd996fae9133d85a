package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"owldlv/internal/failure"
	"owldlv/internal/importer"
	"owldlv/internal/workspace"
)

// Run describes one obqa pipeline run. Zero Strategy means import only;
// zero Import means stage verbatim (or reuse what is already staged).
type Run struct {
	Strategy Strategy
	Import   Formalism

	TBox  string
	ABox  string
	KB    string // folder with tbox/ and abox/ subfolders
	Query string
}

// Validate checks flag combinations before anything touches the filesystem.
func (r Run) Validate() error {
	const op = "obqa"
	if r.Import == 0 && r.Strategy == 0 {
		return failure.New(failure.KindConfig, op, "neither 'import' nor 'run' command specified in 'obqa' mode")
	}
	if r.KB != "" && (r.TBox != "" || r.ABox != "") {
		return failure.New(failure.KindConfig, op, "kb and abox/tbox folders names cannot be specified together")
	}
	if r.KB == "" && (r.TBox == "" || r.ABox == "") {
		return failure.New(failure.KindConfig, op, "no input folders (tbox, abox or kb)")
	}
	if r.Strategy != 0 && r.Query == "" {
		return failure.New(failure.KindConfig, op, "no input query")
	}
	return nil
}

// sources returns the tbox and abox folders, expanding KB.
func (r Run) sources() (tbox, abox string) {
	if r.KB != "" {
		return importer.KBFolders(r.KB)
	}
	return r.TBox, r.ABox
}

// Outcome reports what a run did.
type Outcome struct {
	RunID      string
	State      State
	States     []State
	Key        workspace.Key
	Reused     bool
	ResultPath string

	// Relevant and KeptFacts are set by strategies that prune facts.
	Relevant  int
	KeptFacts int

	Started  time.Time
	Finished time.Time
}

// Duration is the wall time of the run.
func (o *Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

// absQuery makes the query path absolute and checks it exists.
func absQuery(query string) (string, error) {
	abs, err := filepath.Abs(query)
	if err != nil {
		return "", failure.Wrap(failure.KindInternal, "query", err)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", failure.New(failure.KindInput, "query", "%s is not a valid file", query)
	}
	return abs, nil
}
