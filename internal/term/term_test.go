package term

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteEnabled(t *testing.T) {
	p := NewPalette(true)

	assert.Equal(t, "\x1b[32m40\x1b[0m", p.Hi("40"))
	assert.Equal(t, "\x1b[33m-v\x1b[0m", p.Err("-v"))
	assert.Equal(t, "\x1b[31m[FATAL]\x1b[0m ", p.FatalPrefix())
}

func TestPaletteDisabled(t *testing.T) {
	p := NewPalette(false)

	assert.Equal(t, "40", p.Hi("40"))
	assert.Equal(t, "-v", p.Err("-v"))
	assert.Equal(t, "[FATAL] ", p.FatalPrefix())
}

func TestNilPalette(t *testing.T) {
	var p *Palette
	assert.Equal(t, "x", p.wrap(Green, "x"))
}

func TestIsTerminalOnFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}
