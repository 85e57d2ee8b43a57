package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/dark-platforms/parameter"
)

// Built-in clip keys
const (
	ClipPing    = "ping"
	ClipEcho    = "echo"
	ClipCollect = "collect"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves, sweeping linearly from freq to endFreq
type oscillator struct {
	freq     float64
	endFreq  float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a fixed-frequency oscillator
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates an oscillator gliding from startFreq to endFreq over duration
func NewSweep(startFreq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     startFreq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		freq := o.freq
		if o.endFreq != o.freq && o.duration > 0 {
			freq += (o.endFreq - o.freq) * float64(o.position) / float64(o.duration)
		}
		o.phase += freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/release envelope
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			remaining := e.totalSamples - e.position
			vol = float64(remaining) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a linear gain
// math.Log2(0) is -Inf, so zero gain is expressed as Silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// SynthesizePing builds the descending chirp played by the emitter
func SynthesizePing() *Clip {
	rate := Format.SampleRate
	sweep := NewSweep(parameter.PingClipStartFreq, parameter.PingClipEndFreq, parameter.PingClipDuration, WaveSine, rate)
	shaped := NewEnvelope(sweep, parameter.PingClipDuration, parameter.PingClipAttack, parameter.PingClipRelease, rate)
	return NewClip(ClipPing, Format, newVolume(shaped, 0.6))
}

// SynthesizeEcho builds the short click a surface answers with
func SynthesizeEcho() *Clip {
	rate := Format.SampleRate
	tone := NewOscillator(parameter.EchoClipFreq, parameter.EchoClipDuration, WaveSine, rate)
	toneShaped := NewEnvelope(tone, parameter.EchoClipDuration, parameter.EchoClipAttack, parameter.EchoClipRelease, rate)

	// Noise transient gives the click its attack
	noise := NewOscillator(0, parameter.EchoClipDuration, WaveNoise, rate)
	noiseShaped := NewEnvelope(noise, parameter.EchoClipDuration, parameter.EchoClipAttack, parameter.EchoClipRelease/4, rate)

	mixed := beep.Take(rate.N(parameter.EchoClipDuration), beep.Mix(
		newVolume(toneShaped, 0.7),
		newVolume(noiseShaped, 0.2),
	))
	return NewClip(ClipEcho, Format, mixed)
}

// SynthesizeCollect builds the two-note chime played when an object is collected
func SynthesizeCollect() *Clip {
	rate := Format.SampleRate

	// B5
	n1 := NewOscillator(987.77, parameter.CollectNote1Duration, WaveSquare, rate)
	n1Shaped := NewEnvelope(n1, parameter.CollectNote1Duration, parameter.CollectAttack, parameter.CollectNote1Release, rate)

	// E6
	n2 := NewOscillator(1318.51, parameter.CollectNote2Duration, WaveSquare, rate)
	n2Shaped := NewEnvelope(n2, parameter.CollectNote2Duration, parameter.CollectAttack, parameter.CollectNote2Release, rate)

	return NewClip(ClipCollect, Format, newVolume(beep.Seq(n1Shaped, n2Shaped), 0.4))
}

// SynthesizeWord builds a tone stand-in for a spoken word
// index picks the pitch in semitone steps so adjacent words are distinguishable
func SynthesizeWord(key string, index int) *Clip {
	rate := Format.SampleRate
	freq := parameter.WordBaseFreq * math.Pow(2, float64(index%24)/12)

	fund := NewOscillator(freq, parameter.WordClipDuration, WaveSine, rate)
	fundShaped := NewEnvelope(fund, parameter.WordClipDuration, parameter.WordClipAttack, parameter.WordClipRelease, rate)
	over := NewOscillator(freq*2, parameter.WordClipDuration, WaveSaw, rate)
	overShaped := NewEnvelope(over, parameter.WordClipDuration, parameter.WordClipAttack, parameter.WordClipRelease, rate)

	mixed := beep.Take(rate.N(parameter.WordClipDuration), beep.Mix(
		newVolume(fundShaped, 0.5),
		newVolume(overShaped, 0.1),
	))
	return NewClip(key, Format, mixed)
}

// DefaultBank returns a bank with the built-in clips plus a tone for every word key
func DefaultBank(words []string) *ClipBank {
	bank := NewClipBank()
	bank.Put(SynthesizePing())
	bank.Put(SynthesizeEcho())
	bank.Put(SynthesizeCollect())
	for i, w := range words {
		bank.Put(SynthesizeWord(w, i))
	}
	return bank
}
