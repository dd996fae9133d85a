package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"owldlv/internal/failure"
	"owldlv/internal/logging"
)

// SplitLines splits content into lines that keep their terminators.
// Joining the result yields content again.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// SkolemizeLines rewrites every existential rule line and passes every other
// line through unchanged. Lines may carry their terminators, which are
// preserved. The output has exactly one entry per input line.
func SkolemizeLines(lines []string) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		if !IsExistential(line) {
			out[i] = line
			continue
		}
		body, term := splitTerminator(line)
		rule, err := ParseExistential(i, body)
		if err != nil {
			return nil, err
		}
		out[i] = rule.RewriteLine(term)
		logging.SkolemDebug("line %d: %d existential(s), frontier=%v", i, len(rule.Existentials), rule.Frontier())
	}
	return out, nil
}

// Skolemize rewrites the text of a whole rule file.
func Skolemize(content string) (string, error) {
	out, err := SkolemizeLines(SplitLines(content))
	if err != nil {
		return "", err
	}
	return strings.Join(out, ""), nil
}

// SkolemizeFile reads src and writes the skolemized rules to dst.
// Parse errors are classified as failure.KindParse.
func SkolemizeFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read rules %s: %w", src, err)
	}
	out, err := Skolemize(string(data))
	if err != nil {
		return failure.Wrap(failure.KindParse, src, err)
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return fmt.Errorf("write skolemized rules %s: %w", dst, err)
	}
	return nil
}

// SkolemizeDir skolemizes every rule file of srcDir into dstDir (which must
// exist), keeping file names. It returns the written paths in name order.
func SkolemizeDir(srcDir, dstDir string) ([]string, error) {
	timer := logging.StartTimer(logging.CategorySkolem, "SkolemizeDir")
	defer timer.Stop()

	names, err := listFiles(srcDir)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		dst := filepath.Join(dstDir, name)
		if err := SkolemizeFile(filepath.Join(srcDir, name), dst); err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	logging.Skolem("Skolemized %d rule files from %s", len(written), srcDir)
	return written, nil
}

// listFiles returns the sorted names of regular files in dir.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
