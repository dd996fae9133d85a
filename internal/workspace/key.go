package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Key is the identity of a workspace: the canonical absolute parent
// directory of an input source. Two inputs that live in the same canonical
// directory share a Key.
type Key struct {
	dir string
}

// ErrEmptyPath is returned when resolving an empty input path.
var ErrEmptyPath = errors.New("empty input path")

// Resolve canonicalizes the parent directory of inputPath. filepath.Abs
// cleans the path, so trailing separators and "." / ".." segments do not
// change the result. Symlinks are not followed.
func Resolve(inputPath string) (Key, error) {
	if strings.TrimSpace(inputPath) == "" {
		return Key{}, ErrEmptyPath
	}
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return Key{}, fmt.Errorf("resolve %s: %w", inputPath, err)
	}
	return Key{dir: filepath.Dir(abs)}, nil
}

// Dir returns the canonical directory the key stands for.
func (k Key) Dir() string { return k.dir }

// IsZero reports whether the key was never resolved.
func (k Key) IsZero() bool { return k.dir == "" }

func (k Key) String() string { return k.dir }

// Encoded returns the key as a single safe path element.
//
// Encoding: '%' -> "%25", '_' -> "%5F", ':' -> "%3A", then every path
// separator -> '_'. The escapes keep the mapping injective, so "/a_b" and
// "/a/b" never share a workspace.
func (k Key) Encoded() string {
	var b strings.Builder
	b.Grow(len(k.dir) + 8)
	for _, r := range k.dir {
		switch {
		case r == '%':
			b.WriteString("%25")
		case r == '_':
			b.WriteString("%5F")
		case r == ':':
			b.WriteString("%3A")
		case r == '/' || r == filepath.Separator:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DecodeKey inverts Encoded. Separators are restored as filepath.Separator.
func DecodeKey(encoded string) (Key, error) {
	var b strings.Builder
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch c {
		case '_':
			b.WriteRune(filepath.Separator)
		case '%':
			if i+2 >= len(encoded) {
				return Key{}, fmt.Errorf("truncated escape in %q", encoded)
			}
			switch encoded[i+1 : i+3] {
			case "25":
				b.WriteByte('%')
			case "5F":
				b.WriteByte('_')
			case "3A":
				b.WriteByte(':')
			default:
				return Key{}, fmt.Errorf("unknown escape %%%s in %q", encoded[i+1:i+3], encoded)
			}
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return Key{dir: b.String()}, nil
}
