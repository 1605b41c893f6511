// ABOUTME: Plays a short sound on a chosen output device so a volume change can be heard.
// ABOUTME: Decodes MP3, WAV, FLAC, OGG/Vorbis and AIFF; playback goes through malgo.

package preview

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/777genius/vccli/internal/logging"
)

// ErrUnsupportedFormat is returned for files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const playbackTimeout = 10 * time.Second

// Clip is decoded interleaved 16-bit PCM
type Clip struct {
	Samples    []int16
	SampleRate uint32
	Channels   int
}

type decoder func(f *os.File) (*Clip, error)

// fullScale maps a float sample in [-1, 1] onto 16-bit PCM
const fullScale = math.MaxInt16

var decoders = map[string]decoder{
	".mp3": func(f *os.File) (*Clip, error) {
		s, format, err := mp3.Decode(f)
		return fromStreamer(s, format, err, fullScale)
	},
	".wav": func(f *os.File) (*Clip, error) {
		s, format, err := wav.Decode(f)
		return fromStreamer(s, format, err, wavScale(format))
	},
	".flac": func(f *os.File) (*Clip, error) {
		s, format, err := flac.Decode(f)
		return fromStreamer(s, format, err, fullScale)
	},
	".ogg": func(f *os.File) (*Clip, error) {
		s, format, err := vorbis.Decode(f)
		return fromStreamer(s, format, err, fullScale)
	},
	".aiff": decodeAIFF,
	".aif":  decodeAIFF,
}

// Supported reports whether path has a decodable extension
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Decode reads a whole audio file into memory
func Decode(path string) (*Clip, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	clip, err := dec(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return clip, nil
}

// wavScale undoes the divisor beep's wav decoder applies to 16-bit PCM,
// which is 1<<16 - 1 and leaves samples in [-0.5, 0.5].
func wavScale(format beep.Format) float64 {
	if format.Precision == 2 {
		return 1<<16 - 1
	}
	return fullScale
}

func fromStreamer(s beep.StreamSeekCloser, format beep.Format, err error, scale float64) (*Clip, error) {
	if err != nil {
		return nil, err
	}
	defer s.Close()

	clip := &Clip{SampleRate: uint32(format.SampleRate), Channels: format.NumChannels}
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			clip.Samples = append(clip.Samples, toInt16(buf[i][0], scale))
			if clip.Channels >= 2 {
				clip.Samples = append(clip.Samples, toInt16(buf[i][1], scale))
			}
		}
		if !ok || n == 0 {
			break
		}
	}
	if clip.Channels > 2 {
		clip.Channels = 2
	}
	return clip, nil
}

// toInt16 scales v and clamps it to the int16 range
func toInt16(v, scale float64) int16 {
	x := math.Round(v * scale)
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}

func decodeAIFF(f *os.File) (*Clip, error) {
	d := aiff.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("invalid AIFF file")
	}
	d.ReadInfo()

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read AIFF data: %w", err)
	}
	return &Clip{
		Samples:    scaleTo16(buf, int(d.BitDepth)),
		SampleRate: uint32(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

// scaleTo16 narrows or widens integer PCM of the given bit depth to 16 bits
func scaleTo16(buf *audio.IntBuffer, bitDepth int) []int16 {
	shift := bitDepth - 16
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			out[i] = int16(v >> uint(shift))
		case shift < 0:
			out[i] = int16(v << uint(-shift))
		default:
			out[i] = int16(v)
		}
	}
	return out
}

// Bytes returns the clip as little-endian PCM
func (c *Clip) Bytes() []byte {
	b := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

// Player plays clips on one playback device
type Player struct {
	mu       sync.Mutex
	ctx      *malgo.AllocatedContext
	deviceID unsafe.Pointer
}

// NewPlayer opens a player for the named device; empty means the system default.
// An unknown name falls back to the default device.
func NewPlayer(deviceName string) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	p := &Player{ctx: ctx}

	if deviceName == "" {
		return p, nil
	}

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, dev := range devices {
		if strings.EqualFold(dev.Name(), deviceName) {
			p.deviceID = dev.ID.Pointer()
			logging.Debug("Preview device found: %s", deviceName)
			return p, nil
		}
	}
	logging.Warn("Preview device not found: %s, using default", deviceName)
	return p, nil
}

// Play decodes path and blocks until it has been played
func (p *Player) Play(path string) error {
	clip, err := Decode(path)
	if err != nil {
		return err
	}
	return p.PlayClip(clip)
}

// PlayClip blocks until clip has been played or the timeout passes
func (p *Player) PlayClip(clip *Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return fmt.Errorf("player is closed")
	}

	data := clip.Bytes()
	frameBytes := clip.Channels * 2

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(clip.Channels)
	cfg.SampleRate = clip.SampleRate
	cfg.PeriodSizeInFrames = 4096
	cfg.Periods = 4
	cfg.Alsa.NoMMap = 1
	if p.deviceID != nil {
		cfg.Playback.DeviceID = p.deviceID
	}

	var pos int
	done := make(chan struct{})
	var once sync.Once

	onData := func(out, _ []byte, frames uint32) {
		n := copy(out, data[pos:min(pos+int(frames)*frameBytes, len(data))])
		pos += n
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		if pos >= len(data) {
			once.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		return fmt.Errorf("failed to init audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	select {
	case <-done:
		// let the last period drain
		time.Sleep(200 * time.Millisecond)
	case <-time.After(playbackTimeout):
		logging.Warn("Preview playback timed out")
	}
	_ = device.Stop()
	return nil
}

// Close releases the audio context
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}
