// Package config loads rfidclone settings from defaults, a YAML file, the
// environment (RFIDCLONE_*) and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/protocol"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Keys
const (
	KeyPort             = "port"
	KeyBaud             = "baud"
	KeyDataBits         = "data_bits"
	KeyStopBits         = "stop_bits"
	KeyParity           = "parity"
	KeySettleDelay      = "settle_delay"
	KeyReplyTimeout     = "reply_timeout"
	KeyHandshakeTimeout = "handshake_timeout"
	KeyJournal          = "journal"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
)

const (
	envPrefix = "RFIDCLONE"
	fileName  = "rfidclone"
)

// ErrInvalid is wrapped by every validation failure from Load
var ErrInvalid = errors.New("invalid configuration")

// Config is the validated settings
type Config struct {
	Port             string
	BaudRate         int
	DataBits         int
	StopBits         int
	Parity           channel.Parity
	SettleDelay      time.Duration
	ReplyTimeout     time.Duration
	HandshakeTimeout time.Duration
	// Journal is the sqlite file path; empty disables the journal
	Journal string
	Log     Log
}

// Log controls logger output
type Log struct {
	Level zerolog.Level
	File  string
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeyBaud, channel.DefaultBaudRate)
	v.SetDefault(KeyDataBits, 8)
	v.SetDefault(KeyStopBits, 1)
	v.SetDefault(KeyParity, "none")
	v.SetDefault(KeySettleDelay, channel.DefaultSettleDelay)
	v.SetDefault(KeyReplyTimeout, protocol.DefaultReplyTimeout)
	v.SetDefault(KeyHandshakeTimeout, protocol.DefaultHandshakeTimeout)
	v.SetDefault(KeyJournal, DefaultJournalPath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return v
}

// ReadFile merges a config file into v. With an empty path it looks for
// rfidclone.yaml in the working directory and the user config directory; not
// finding one there is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "rfidclone"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads and validates the settings held by v
func Load(v *viper.Viper) (Config, error) {
	parity, err := channel.ParseParity(v.GetString(KeyParity))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalid, KeyParity, err)
	}
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString(KeyLogLevel)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalid, KeyLogLevel, err)
	}

	cfg := Config{
		Port:             v.GetString(KeyPort),
		BaudRate:         v.GetInt(KeyBaud),
		DataBits:         v.GetInt(KeyDataBits),
		StopBits:         v.GetInt(KeyStopBits),
		Parity:           parity,
		SettleDelay:      v.GetDuration(KeySettleDelay),
		ReplyTimeout:     v.GetDuration(KeyReplyTimeout),
		HandshakeTimeout: v.GetDuration(KeyHandshakeTimeout),
		Journal:          v.GetString(KeyJournal),
		Log: Log{
			Level: level,
			File:  v.GetString(KeyLogFile),
		},
	}

	line := channel.DefaultConfig()
	for _, opt := range append(cfg.PortOptions(), channel.WithBaudRate(cfg.BaudRate)) {
		if err := opt(&line); err != nil {
			return Config{}, fmt.Errorf("%w: serial line: %w", ErrInvalid, err)
		}
	}

	for key, d := range map[string]time.Duration{
		KeyReplyTimeout:     cfg.ReplyTimeout,
		KeyHandshakeTimeout: cfg.HandshakeTimeout,
	} {
		if d <= 0 {
			return Config{}, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, key, d)
		}
	}
	if cfg.SettleDelay < 0 {
		return Config{}, fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeySettleDelay)
	}
	return cfg, nil
}

// PortOptions returns the line settings other than the baud rate, which
// channel.Manager.Open takes separately.
func (c Config) PortOptions() []channel.Option {
	return []channel.Option{
		channel.WithDataBits(c.DataBits),
		channel.WithStopBits(c.StopBits),
		channel.WithParity(c.Parity),
	}
}

// DefaultJournalPath is journal.db under $XDG_STATE_HOME/rfidclone, falling
// back to ~/.local/state.
func DefaultJournalPath() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "rfidclone", "journal.db")
}
