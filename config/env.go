package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/echo"
	"github.com/lixenwraith/dark-platforms/sonar"
)

// Environment variables read by ApplyEnv, in addition to the audio ones
const (
	EnvTickInterval  = "DARK_PLATFORMS_TICK_INTERVAL"
	EnvRayCount      = "DARK_PLATFORMS_RAY_COUNT"
	EnvFanAngle      = "DARK_PLATFORMS_FAN_ANGLE"
	EnvMaxRange      = "DARK_PLATFORMS_MAX_RANGE"
	EnvSpeedOfSound  = "DARK_PLATFORMS_SPEED_OF_SOUND"
	EnvScanPlane     = "DARK_PLATFORMS_SCAN_PLANE"
	EnvFalloff       = "DARK_PLATFORMS_VOLUME_FALLOFF"
	EnvPitchHeight   = "DARK_PLATFORMS_PITCH_HEIGHT_FACTOR"
	EnvEchoChannels  = "DARK_PLATFORMS_ECHO_CHANNELS"
	EnvMaxConcurrent = "DARK_PLATFORMS_MAX_CONCURRENT_ECHOES"
	EnvAnnouncerGap  = "DARK_PLATFORMS_ANNOUNCER_GAP"
)

// ApplyEnv overrides cfg from DARK_PLATFORMS_* variables
// Audio variables keep their lenient parsing; malformed core values are reported
func ApplyEnv(cfg *Config) error {
	audio.ApplyEnv(&cfg.Audio)

	var errs error
	lookup := func(key string, apply func(string) error) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		if err := apply(v); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err))
		}
	}

	lookup(EnvTickInterval, func(v string) (err error) {
		cfg.Engine.TickInterval, err = time.ParseDuration(v)
		return err
	})
	lookup(EnvRayCount, func(v string) (err error) {
		cfg.Sonar.RayCount, err = strconv.Atoi(v)
		return err
	})
	lookup(EnvFanAngle, floatInto(&cfg.Sonar.FanAngleDegrees))
	lookup(EnvMaxRange, floatInto(&cfg.Sonar.MaxRange))
	lookup(EnvSpeedOfSound, floatInto(&cfg.Sonar.SpeedOfSound))
	lookup(EnvScanPlane, func(v string) error {
		var p sonar.Plane
		if err := p.UnmarshalText([]byte(v)); err != nil {
			return err
		}
		cfg.Sonar.Plane = p
		return nil
	})
	lookup(EnvFalloff, floatInto(&cfg.Echo.VolumeFalloffRate))
	lookup(EnvPitchHeight, floatInto(&cfg.Echo.PitchHeightFactor))
	lookup(EnvEchoChannels, func(v string) error {
		ch, err := parseChannels(v)
		if err != nil {
			return err
		}
		cfg.Echo.Channels = ch
		return nil
	})
	lookup(EnvMaxConcurrent, func(v string) (err error) {
		cfg.Echo.MaxConcurrent, err = strconv.Atoi(v)
		return err
	})
	lookup(EnvAnnouncerGap, floatInto(&cfg.Announcer.Gap))
	return errs
}

func floatInto(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func parseChannels(v string) (echo.Channel, error) {
	switch v {
	case "spatial":
		return echo.ChannelSpatial, nil
	case "fallback":
		return echo.ChannelFallback, nil
	case "both":
		return echo.ChannelBoth, nil
	default:
		return 0, errors.New("want spatial, fallback or both")
	}
}
