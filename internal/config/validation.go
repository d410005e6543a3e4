package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for semantic errors.
func Validate(cfg Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if cfg.Server.MaxContentLength <= 0 {
		errs = append(errs, "server.max_content_length must be > 0")
	}
	if cfg.Server.MaxConnections < 0 {
		errs = append(errs, "server.max_connections cannot be negative")
	}
	if cfg.Server.Workers < 1 {
		errs = append(errs, "server.workers must be >= 1")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout cannot be negative")
	}

	if len(cfg.Upload.AllowedExtensions) == 0 {
		errs = append(errs, "upload.allowed_extensions cannot be empty")
	}
	for _, ext := range cfg.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("upload.allowed_extensions entry %q must start with '.'", ext))
		}
	}

	if !oneOf(strings.ToLower(cfg.Log.Level), "debug", "info", "warn", "warning", "error", "fatal", "critical") {
		errs = append(errs, "log.level must be one of debug|info|warn|error|fatal")
	}

	if _, err := cfg.Cleaner.Patterns(); err != nil {
		errs = append(errs, "cleaner: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func oneOf(val string, options ...string) bool {
	for _, opt := range options {
		if val == opt {
			return true
		}
	}
	return false
}
