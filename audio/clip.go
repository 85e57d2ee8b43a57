package audio

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/dark-platforms/parameter"
)

// Format is the sample format every synthesized clip is buffered in
var Format = beep.Format{
	SampleRate:  beep.SampleRate(parameter.AudioSampleRate),
	NumChannels: parameter.AudioChannels,
	Precision:   parameter.AudioPrecision,
}

// Clip is an immutable in-memory sound
type Clip struct {
	Key    string
	buffer *beep.Buffer
}

// NewClip buffers the streamer fully and wraps it as a clip
func NewClip(key string, format beep.Format, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(format)
	if s != nil {
		buf.Append(s)
	}
	return &Clip{Key: NormalizeKey(key), buffer: buf}
}

// Valid reports whether the clip exists and has samples
func (c *Clip) Valid() bool {
	return c != nil && c.buffer != nil && c.buffer.Len() > 0
}

// Len returns the sample count
func (c *Clip) Len() int {
	if c == nil || c.buffer == nil {
		return 0
	}
	return c.buffer.Len()
}

// Length returns the unpitched play time
func (c *Clip) Length() time.Duration {
	if !c.Valid() {
		return 0
	}
	return c.buffer.Format().SampleRate.D(c.buffer.Len())
}

// Streamer returns a fresh streamer over the whole clip
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

// SampleRate returns the buffered sample rate
func (c *Clip) SampleRate() beep.SampleRate {
	return c.buffer.Format().SampleRate
}

// NormalizeKey folds whitespace runs to underscores and lowercases
// "You completed the challenge in" and "you_completed_the_challenge_in" name the same clip
func NormalizeKey(key string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(key), unicode.IsSpace)
	return strings.ToLower(strings.Join(fields, "_"))
}

// ClipBank is a keyed clip library, safe for concurrent use
type ClipBank struct {
	mu    sync.RWMutex
	clips map[string]*Clip
}

// NewClipBank creates an empty bank
func NewClipBank() *ClipBank {
	return &ClipBank{clips: make(map[string]*Clip)}
}

// Put stores clip under its normalized key, replacing any existing clip
func (b *ClipBank) Put(clip *Clip) {
	if clip == nil {
		return
	}
	b.mu.Lock()
	b.clips[NormalizeKey(clip.Key)] = clip
	b.mu.Unlock()
}

// Get returns the clip for key, nil when absent
func (b *ClipBank) Get(key string) *Clip {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.clips[NormalizeKey(key)]
}

// Has reports whether key resolves to a usable clip
func (b *ClipBank) Has(key string) bool {
	return b.Get(key).Valid()
}

// Keys returns sorted keys
func (b *ClipBank) Keys() []string {
	b.mu.RLock()
	keys := make([]string, 0, len(b.clips))
	for k := range b.clips {
		keys = append(keys, k)
	}
	b.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the clip count
func (b *ClipBank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clips)
}
