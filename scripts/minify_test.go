package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinifyCSS(t *testing.T) {
	in := "/* header */\n.a {\n    color: red;\n    margin: 0 auto;\n}\n\n.b > .c { padding: 1px; }\n"
	assert.Equal(t, ".a{color:red;margin:0 auto}.b>.c{padding:1px}", minifyCSS(in))
}

func TestMinifyFileWritesSibling(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "site.css")
	require.NoError(t, os.WriteFile(src, []byte("body { margin: 0; }"), 0o644))

	require.NoError(t, minifyFile(src))

	out, err := os.ReadFile(filepath.Join(dir, "site.min.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{margin:0}", string(out))
}
