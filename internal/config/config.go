// Package config implements layered configuration for cleandoc.
// Precedence: defaults < config file (./cleandoc.toml or --config) < env (CLEANDOC_*) < flags.
// The unprefixed HOST, PORT, DEBUG, LOG_LEVEL, LOG_FILE and UPLOAD_FOLDER
// variables are honoured below their CLEANDOC_* equivalents.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/OmarSalvatierra99/cleandoc/clean"
)

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Upload  UploadConfig  `toml:"upload" mapstructure:"upload"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Cleaner CleanerConfig `toml:"cleaner" mapstructure:"cleaner"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `toml:"host" mapstructure:"host"`
	Port             int           `toml:"port" mapstructure:"port"`
	MaxContentLength int64         `toml:"max_content_length" mapstructure:"max_content_length"` // bytes, per request
	MaxConnections   int           `toml:"max_connections" mapstructure:"max_connections"`       // 0 = unlimited
	Workers          int           `toml:"workers" mapstructure:"workers"`                       // documents cleaned in parallel per request
	ShutdownTimeout  time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Debug            bool          `toml:"debug" mapstructure:"debug"`
}

// UploadConfig holds upload handling settings.
type UploadConfig struct {
	Folder            string   `toml:"folder" mapstructure:"folder"`
	AllowedExtensions []string `toml:"allowed_extensions" mapstructure:"allowed_extensions"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"` // debug | info | warn | error
	File  string `toml:"file" mapstructure:"file"`
	JSON  bool   `toml:"json" mapstructure:"json"`
}

// CleanerConfig holds the marker phrases.
type CleanerConfig struct {
	OrgPhrase      string `toml:"org_phrase" mapstructure:"org_phrase"`
	DirPhrase      string `toml:"dir_phrase" mapstructure:"dir_phrase"`
	SentinelPhrase string `toml:"sentinel_phrase" mapstructure:"sentinel_phrase"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             5001,
			MaxContentLength: 50 << 20,
			MaxConnections:   0,
			Workers:          4,
			ShutdownTimeout:  10 * time.Second,
			Debug:            false,
		},
		Upload: UploadConfig{
			Folder:            "/tmp/cleandoc_uploads",
			AllowedExtensions: []string{".docx"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Cleaner: CleanerConfig{
			OrgPhrase:      clean.DefaultOrgPhrase,
			DirPhrase:      clean.DefaultDirPhrase,
			SentinelPhrase: clean.DefaultSentinelPhrase,
		},
	}
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Patterns compiles the configured marker phrases.
func (c CleanerConfig) Patterns() (*clean.Patterns, error) {
	return clean.CompilePatterns(c.OrgPhrase, c.DirPhrase, c.SentinelPhrase)
}
