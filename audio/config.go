package audio

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/lixenwraith/dark-platforms/parameter"
)

// AudioConfig holds playback settings
type AudioConfig struct {
	Enabled        bool               `toml:"enabled" yaml:"enabled" default:"true"`
	MasterVolume   float64            `toml:"master_volume" yaml:"master_volume" default:"1" validate:"gte=0,lte=1"`
	ClipVolumes    map[string]float64 `toml:"clip_volumes" yaml:"clip_volumes" validate:"dive,gte=0,lte=1"`
	SampleRate     int                `toml:"sample_rate" yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferDuration time.Duration      `toml:"buffer_duration" yaml:"buffer_duration" default:"50ms" validate:"gt=0"`
}

// DefaultAudioConfig returns the built-in settings
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:        true,
		MasterVolume:   1.0,
		ClipVolumes:    make(map[string]float64),
		SampleRate:     parameter.AudioSampleRate,
		BufferDuration: parameter.AudioBufferDuration,
	}
}

// ClipVolume returns the per-clip gain, 1 when unset
func (c *AudioConfig) ClipVolume(key string) float64 {
	if v, ok := c.ClipVolumes[NormalizeKey(key)]; ok {
		return v
	}
	return 1.0
}

// LoadAudioConfig returns defaults with environment overrides applied
func LoadAudioConfig() *AudioConfig {
	cfg := DefaultAudioConfig()
	ApplyEnv(cfg)
	return cfg
}

// ApplyEnv overrides cfg from DARK_PLATFORMS_* environment variables
// Malformed values are ignored
func ApplyEnv(cfg *AudioConfig) {
	if enabled := os.Getenv("DARK_PLATFORMS_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100 in the environment
	if volume := os.Getenv("DARK_PLATFORMS_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = float64(val) / 100.0
			if cfg.MasterVolume < 0 {
				cfg.MasterVolume = 0
			}
			if cfg.MasterVolume > 1 {
				cfg.MasterVolume = 1
			}
		}
	}

	// Per-clip volumes as a JSON object keyed by clip name
	if clipVols := os.Getenv("DARK_PLATFORMS_CLIP_VOLUMES"); clipVols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(clipVols), &volumes); err == nil {
			if cfg.ClipVolumes == nil {
				cfg.ClipVolumes = make(map[string]float64, len(volumes))
			}
			for k, v := range volumes {
				cfg.ClipVolumes[NormalizeKey(k)] = v
			}
		}
	}

	if sampleRate := os.Getenv("DARK_PLATFORMS_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}
}
