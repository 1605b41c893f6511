package preview

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes a 16-bit PCM WAV file
func writeWAV(t *testing.T, path string, sampleRate uint32, channels uint16, samples []int16) {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		require.NoError(t, binary.Write(&data, binary.LittleEndian, s))
	}

	var buf bytes.Buffer
	w := func(v interface{}) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }
	buf.WriteString("RIFF")
	w(uint32(36 + data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1))
	w(channels)
	w(sampleRate)
	w(sampleRate * uint32(channels) * 2)
	w(channels * 2)
	w(uint16(16))
	buf.WriteString("data")
	w(uint32(data.Len()))
	buf.Write(data.Bytes())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.wav")
	writeWAV(t, path, 44100, 2, []int16{0, 0, 16384, -16384, 32767, -32768})

	clip, err := Decode(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(44100), clip.SampleRate)
	assert.Equal(t, 2, clip.Channels)
	require.Len(t, clip.Samples, 6)
	assert.InDelta(t, 16384, clip.Samples[2], 2)
	assert.InDelta(t, -16384, clip.Samples[3], 2)
}

func TestDecodeWAVKeepsFullScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loud.wav")
	samples := []int16{32767, -32768, 1000, -1000, 1, -1}
	writeWAV(t, path, 48000, 2, samples)

	clip, err := Decode(path)
	require.NoError(t, err)
	require.Len(t, clip.Samples, len(samples))
	for i, want := range samples {
		assert.InDelta(t, want, clip.Samples[i], 1, "sample %d", i)
	}
}

func TestDecodeMonoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.WAV")
	writeWAV(t, path, 8000, 1, []int16{100, 200, 300})

	clip, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 1, clip.Channels)
	assert.Len(t, clip.Samples, 3)
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode("/tmp/sound.xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open audio file")
}

func TestSupported(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"sound.mp3", true},
		{"sound.wav", true},
		{"sound.flac", true},
		{"sound.ogg", true},
		{"sound.aiff", true},
		{"sound.AIF", true},
		{"/path/to/sound.mp3", true},
		{"sound.txt", false},
		{"sound", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.filename))
		})
	}
}

func TestScaleTo16(t *testing.T) {
	buf := &audio.IntBuffer{Data: []int{0x7f, -0x80}}
	assert.Equal(t, []int16{0x7f00, -0x8000}, scaleTo16(buf, 8))

	buf = &audio.IntBuffer{Data: []int{0x123456}}
	assert.Equal(t, []int16{0x1234}, scaleTo16(buf, 24))

	buf = &audio.IntBuffer{Data: []int{1000}}
	assert.Equal(t, []int16{1000}, scaleTo16(buf, 16))
}

func TestClipBytes(t *testing.T) {
	c := &Clip{Samples: []int16{0x0102, -1}}
	assert.Equal(t, []byte{0x02, 0x01, 0xff, 0xff}, c.Bytes())
}

func TestToInt16Clamps(t *testing.T) {
	assert.Equal(t, int16(32767), toInt16(1.5, fullScale))
	assert.Equal(t, int16(-32768), toInt16(-2, fullScale))
	assert.Equal(t, int16(0), toInt16(0, fullScale))
	assert.Equal(t, int16(16384), toInt16(16384.0/65535, 1<<16-1))
}
