package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TDIALOG_DIALOG_GRACE_DELAY.
const EnvPrefix = "TDIALOG"

// Config holds application configuration.
type Config struct {
	Dialog DialogConfig
	Log    LogConfig
	UI     UIConfig
}

// DialogConfig holds provider settings.
type DialogConfig struct {
	GraceDelay time.Duration `mapstructure:"grace_delay"`
	Width      int
}

// LogConfig holds logging settings. An empty File discards logs; the
// terminal belongs to the TUI.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"grace-delay": "dialog.grace_delay",
	"log-level":   "log.level",
	"log-file":    "log.file",
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tdialog", "config.toml")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "tdialog", "config.toml")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("dialog.grace_delay", "100ms")
	v.SetDefault("dialog.width", 56)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("ui.markdown_style", "dark")
	v.SetConfigType("toml")
	return v
}

// Load reads configuration from path (DefaultPath when empty), then applies
// TDIALOG_ environment overrides and any flags that were set. A missing file
// yields the defaults.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := newViper()
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Dialog.GraceDelay < 0 {
		return Config{}, fmt.Errorf("dialog.grace_delay must not be negative, got %s", c.Dialog.GraceDelay)
	}
	return c, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("dialog.grace_delay", cfg.Dialog.GraceDelay.String())
	v.Set("dialog.width", cfg.Dialog.Width)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.markdown_style", cfg.UI.MarkdownStyle)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SlogLevel parses Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
