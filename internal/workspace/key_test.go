package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Canonicalization(t *testing.T) {
	base := t.TempDir()
	tbox := filepath.Join(base, "kb", "tbox")

	variants := []string{
		tbox,
		tbox + string(filepath.Separator),
		filepath.Join(base, "kb", ".", "tbox"),
		base + "/kb/other/../tbox",
		base + "/./kb//tbox/",
	}

	want, err := Resolve(tbox)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "kb"), want.Dir())

	for _, v := range variants {
		got, err := Resolve(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, "variant %q", v)
		assert.Equal(t, want.Encoded(), got.Encoded(), "variant %q", v)
	}
}

func TestResolve_RelativePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := Resolve("tbox")
	require.NoError(t, err)
	assert.Equal(t, wd, got.Dir())
}

func TestResolve_Empty(t *testing.T) {
	_, err := Resolve("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestEncoded_Injective(t *testing.T) {
	a := Key{dir: "/data/a_b"}
	b := Key{dir: "/data/a/b"}
	c := Key{dir: "/data/a%5Fb"}

	assert.NotEqual(t, a.Encoded(), b.Encoded())
	assert.NotEqual(t, a.Encoded(), c.Encoded())
	assert.NotEqual(t, b.Encoded(), c.Encoded())
	assert.NotContains(t, a.Encoded(), "/")
}

func TestEncoded_RoundTrip(t *testing.T) {
	for _, dir := range []string{"/", "/data/kb", "/data/a_b/c%d", "/x:y/z__"} {
		k := Key{dir: filepath.FromSlash(dir)}
		decoded, err := DecodeKey(k.Encoded())
		require.NoError(t, err, dir)
		assert.Equal(t, k, decoded, dir)
	}
}

func TestDecodeKey_BadEscape(t *testing.T) {
	_, err := DecodeKey("_data%7")
	assert.Error(t, err)
	_, err = DecodeKey("_data%41")
	assert.Error(t, err)
}
