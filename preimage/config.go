package preimage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/pelletier/go-toml/v2"
)

// Config bounds the resources held by a Registry.
type Config struct {
	// MaxSessions caps the number of simultaneously open sessions.
	MaxSessions int `toml:"max-sessions"`

	// MaxPreimageSize caps the bytes absorbed by one session. Zero means no limit.
	MaxPreimageSize datasize.ByteSize `toml:"max-preimage-size"`

	// IdleTimeout is how long a session may go without an update before it
	// becomes eligible for reaping. Zero disables reaping.
	IdleTimeout Duration `toml:"idle-timeout"`

	// FinalizedHistory is the number of finalized session ids remembered so
	// that reuse is reported as SessionFinalizedError.
	FinalizedHistory int `toml:"finalized-history"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		MaxSessions:      1024,
		MaxPreimageSize:  4 * datasize.GB,
		IdleTimeout:      Duration(time.Hour),
		FinalizedHistory: 4096,
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max-sessions must be positive, got %d", c.MaxSessions)
	}
	if c.FinalizedHistory <= 0 {
		return fmt.Errorf("finalized-history must be positive, got %d", c.FinalizedHistory)
	}
	if c.IdleTimeout < 0 {
		return errors.New("idle-timeout must not be negative")
	}
	return nil
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("could not decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Duration is a time.Duration written as a string ("90s", "1h") in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
