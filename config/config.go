// Package config loads the sandbox settings: defaults, then a TOML or YAML file, then environment
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/dark-platforms/audio"
	"github.com/lixenwraith/dark-platforms/echo"
	"github.com/lixenwraith/dark-platforms/sonar"
)

// Sentinel errors
var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalid           = errors.New("invalid configuration")
)

// Config is the complete sandbox configuration
type Config struct {
	Engine     EngineConfig      `toml:"engine" yaml:"engine"`
	Audio      audio.AudioConfig `toml:"audio" yaml:"audio"`
	Sonar      sonar.ScanConfig  `toml:"sonar" yaml:"sonar" validate:"-"`
	Echo       echo.Config       `toml:"echo" yaml:"echo" validate:"-"`
	Announcer  AnnouncerConfig   `toml:"announcer" yaml:"announcer"`
	Relocation RelocationConfig  `toml:"relocation" yaml:"relocation"`
	Player     PlayerConfig      `toml:"player" yaml:"player"`
	Level      Level             `toml:"level" yaml:"level"`
}

// EngineConfig drives the scheduler
type EngineConfig struct {
	TickInterval time.Duration `toml:"tick_interval" yaml:"tick_interval" default:"10ms" validate:"gt=0"`
}

// AnnouncerConfig tunes the time announcement
type AnnouncerConfig struct {
	// Gap is seconds shaved off each word clip, negative lengthens the pause
	Gap float64 `toml:"gap" yaml:"gap" default:"0.05" validate:"gte=-0.5,lte=0.5"`
}

// RelocationConfig tunes the collect loop
type RelocationConfig struct {
	MinDistance   float64 `toml:"min_distance" yaml:"min_distance" default:"4" validate:"gte=0"`
	MaxDistance   float64 `toml:"max_distance" yaml:"max_distance" default:"7" validate:"gtefield=MinDistance"`
	CollectRadius float64 `toml:"collect_radius" yaml:"collect_radius" default:"0.75" validate:"gt=0"`
}

// PlayerConfig sets the player body
type PlayerConfig struct {
	Start    Vec3    `toml:"start" yaml:"start"`
	Radius   float64 `toml:"radius" yaml:"radius" default:"0.4" validate:"gt=0"`
	MoveStep float64 `toml:"move_step" yaml:"move_step" default:"0.5" validate:"gt=0"`
}

// Default returns the built-in configuration with the default level
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Tags are static, a failure here is a programming error
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	cfg.Audio.ClipVolumes = make(map[string]float64)
	cfg.Player.Start = Vec3{Y: 1}
	cfg.Level = DefaultLevel()
	return cfg
}

// Load reads path over the defaults and applies DARK_PLATFORMS_* overrides
// An empty path loads defaults and environment only
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(cfg, data, filepath.Ext(path)); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays data in the format named by ext onto cfg
// Unknown keys are rejected
func Decode(cfg *Config, data []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return cfg.Level.fillEchoDefaults()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs tag rules and domain checks, reporting every violation
func (c *Config) Validate() error {
	var errs error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s failed %s=%s (value %v)",
					ErrInvalid, fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	errs = multierr.Append(errs, c.Sonar.Validate())
	errs = multierr.Append(errs, c.Echo.Validate())
	errs = multierr.Append(errs, c.Level.Validate())
	return errs
}

// EchoFor returns the responder tuning of a surface, the global one when it has none
func (c *Config) EchoFor(s Surface) echo.Config {
	if s.Echo != nil {
		return *s.Echo
	}
	return c.Echo
}
