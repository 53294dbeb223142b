package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"root-collapse", "/////", "/"},
		{"backslashes", `C:\Users\me\file.txt`, "C:/Users/me/file.txt"},
		{"mixed-separators", `/a\b//c`, "/a/b/c"},
		{"trailing-slash-dropped", "/a/b/", "/a/b"},
		{"single-slash-kept", "/", "/"},
		{"leading-whitespace-stripped", "   /a/b", "/a/b"},
		{"interior-space-preserved", "/a/my file.txt", "/a/my file.txt"},
		{"no-change", "/a/b/c", "/a/b/c"},
		{"relative", "a/b/c", "a/b/c"},
		{"non-ascii-passthrough", "/a/café/é.txt", "/a/café/é.txt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NormalizeString(c.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	// Normalization is idempotent: normalize(normalize(x)) == normalize(x).
	inputs := []string{"", "/", "/////", `C:\a\\b\`, "   /x/y/", "a//b//c//", "/only"}
	for _, in := range inputs {
		once := NormalizeString(in)
		twice := NormalizeString(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestBasenameDirnameExtension(t *testing.T) {
	assert.Equal(t, "report.pdf", Basename("/u/Documents/report.pdf"))
	assert.Equal(t, "report.pdf", Basename("report.pdf"))
	assert.Equal(t, "/u/Documents", Dirname("/u/Documents/report.pdf"))
	assert.Equal(t, "/", Dirname("/report.pdf"))
	assert.Equal(t, "", Dirname("report.pdf"))
	assert.Equal(t, "pdf", Extension("/u/Documents/REPORT.PDF"))
	assert.Equal(t, "", Extension("/u/.gitignore"))
	assert.Equal(t, "gz", Extension("/u/archive.tar.gz"))
}
