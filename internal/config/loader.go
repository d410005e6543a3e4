package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "cleandoc.toml"

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath overrides the config file path. A missing default file is
	// ignored; a missing explicit file is an error.
	ConfigPath string
	// FlagOverrides are highest-priority overrides from CLI flags (dot-notated keys).
	FlagOverrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < file < legacy env < env (CLEANDOC_*) < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	path, explicit := opts.ConfigPath, opts.ConfigPath != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := mergeConfigFile(v, path, explicit); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(v, legacyEnvBindings); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(v, envBindings); err != nil {
		return Config{}, err
	}
	applyFlagOverrides(v, opts.FlagOverrides)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds viper with built-in defaults.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.max_content_length", def.Server.MaxContentLength)
	v.SetDefault("server.max_connections", def.Server.MaxConnections)
	v.SetDefault("server.workers", def.Server.Workers)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("server.debug", def.Server.Debug)

	v.SetDefault("upload.folder", def.Upload.Folder)
	v.SetDefault("upload.allowed_extensions", def.Upload.AllowedExtensions)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.json", def.Log.JSON)

	v.SetDefault("cleaner.org_phrase", def.Cleaner.OrgPhrase)
	v.SetDefault("cleaner.dir_phrase", def.Cleaner.DirPhrase)
	v.SetDefault("cleaner.sentinel_phrase", def.Cleaner.SentinelPhrase)
}

// mergeConfigFile merges the TOML config file if it exists.
func mergeConfigFile(v *viper.Viper, path string, required bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

type envBinding struct {
	Env  string
	Key  string
	Kind valueKind
}

// applyEnvOverrides reads the given env vars and applies them.
func applyEnvOverrides(v *viper.Viper, bindings []envBinding) error {
	for _, binding := range bindings {
		val := os.Getenv(binding.Env)
		if val == "" {
			continue
		}
		parsed, err := parseValueByKind(val, binding.Kind)
		if err != nil {
			return fmt.Errorf("env %s: %w", binding.Env, err)
		}
		v.Set(binding.Key, parsed)
	}
	return nil
}

// applyFlagOverrides applies CLI overrides as highest-precedence values.
func applyFlagOverrides(v *viper.Viper, overrides map[string]any) {
	for k, val := range overrides {
		v.Set(k, val)
	}
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Helpers for env + parsing ---------------------------------------------------

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindInt64
	kindDuration
	kindStringSlice
)

var envBindings = []envBinding{
	{"CLEANDOC_HOST", "server.host", kindString},
	{"CLEANDOC_PORT", "server.port", kindInt},
	{"CLEANDOC_MAX_CONTENT_LENGTH", "server.max_content_length", kindInt64},
	{"CLEANDOC_MAX_CONNECTIONS", "server.max_connections", kindInt},
	{"CLEANDOC_WORKERS", "server.workers", kindInt},
	{"CLEANDOC_SHUTDOWN_TIMEOUT", "server.shutdown_timeout", kindDuration},
	{"CLEANDOC_DEBUG", "server.debug", kindBool},

	{"CLEANDOC_UPLOAD_FOLDER", "upload.folder", kindString},
	{"CLEANDOC_ALLOWED_EXTENSIONS", "upload.allowed_extensions", kindStringSlice},

	{"CLEANDOC_LOG_LEVEL", "log.level", kindString},
	{"CLEANDOC_LOG_FILE", "log.file", kindString},
	{"CLEANDOC_LOG_JSON", "log.json", kindBool},

	{"CLEANDOC_ORG_PHRASE", "cleaner.org_phrase", kindString},
	{"CLEANDOC_DIR_PHRASE", "cleaner.dir_phrase", kindString},
	{"CLEANDOC_SENTINEL_PHRASE", "cleaner.sentinel_phrase", kindString},
}

// legacyEnvBindings are the unprefixed variables of earlier deployments.
var legacyEnvBindings = []envBinding{
	{"HOST", "server.host", kindString},
	{"PORT", "server.port", kindInt},
	{"DEBUG", "server.debug", kindBool},
	{"LOG_LEVEL", "log.level", kindString},
	{"LOG_FILE", "log.file", kindString},
	{"UPLOAD_FOLDER", "upload.folder", kindString},
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected boolean: %w", err)
		}
		return v, nil
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		return v, nil
	case kindInt64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		return v, nil
	case kindDuration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("expected duration: %w", err)
		}
		return v, nil
	case kindStringSlice:
		parts := strings.Split(raw, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported value kind")
	}
}
