package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportListAndDataURL(t *testing.T) {
	flags := testFlags(t)
	src := t.TempDir()
	a := writePNG(t, src, "hero.png", 160, 90)
	b := writePNG(t, src, "thumb.png", 32, 32)

	stdout, _, err := run(t, NewImportCmd(flags), a, b)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1\thero.png\t160x90\tpng")
	assert.Contains(t, stdout, "2\tthumb.png\t32x32\tpng")

	stdout, _, err = run(t, NewListCmd(flags))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1\thero.png"))

	for _, variant := range []string{"original", "lqip", "gip", "lcplqip"} {
		stdout, _, err = run(t, NewDataURLCmd(flags), "1", "--variant", variant)
		require.NoError(t, err, variant)
		assert.True(t, strings.HasPrefix(stdout, "data:image/png;base64,"), variant)
	}
}

func TestImportReportsFailures(t *testing.T) {
	flags := testFlags(t)
	good := writePNG(t, t.TempDir(), "ok.png", 16, 16)

	stdout, stderr, err := run(t, NewImportCmd(flags), good, filepath.Join(t.TempDir(), "missing.png"))
	assert.EqualError(t, err, "1 of 2 files failed to import")
	assert.Contains(t, stdout, "ok.png")
	assert.Contains(t, stderr, "missing.png")
}

func TestImportRequiresArgs(t *testing.T) {
	_, _, err := run(t, NewImportCmd(testFlags(t)))
	assert.Error(t, err)
}

func TestListEmpty(t *testing.T) {
	stdout, _, err := run(t, NewListCmd(testFlags(t)))
	require.NoError(t, err)
	assert.Contains(t, stdout, "No assets found.")
}

func TestDataURLErrors(t *testing.T) {
	flags := testFlags(t)
	img := writePNG(t, t.TempDir(), "a.png", 16, 16)
	_, _, err := run(t, NewImportCmd(flags), img)
	require.NoError(t, err)

	_, _, err = run(t, NewDataURLCmd(flags), "abc")
	assert.ErrorContains(t, err, "invalid asset id")

	_, _, err = run(t, NewDataURLCmd(flags), "42")
	assert.Error(t, err)

	_, _, err = run(t, NewDataURLCmd(flags), "1", "--variant", "blur")
	assert.ErrorContains(t, err, "variant must be one of")
}

func TestWarmCmd(t *testing.T) {
	flags := testFlags(t)
	src := t.TempDir()
	_, _, err := run(t, NewImportCmd(flags), writePNG(t, src, "a.png", 64, 48), writePNG(t, src, "b.png", 48, 64))
	require.NoError(t, err)

	stdout, _, err := run(t, NewWarmCmd(flags))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Warmed 2 assets")
}

func TestWarmCmdReset(t *testing.T) {
	flags := testFlags(t)
	src := t.TempDir()
	_, _, err := run(t, NewImportCmd(flags), "--warm", writePNG(t, src, "a.png", 64, 48))
	require.NoError(t, err)

	stdout, _, err := run(t, NewWarmCmd(flags), "--reset")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 3 variants")
	assert.Contains(t, stdout, "Warmed 1 assets")
}
