package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range append(append([]envBinding{}, envBindings...), legacyEnvBindings...) {
		t.Setenv(b.Env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cleandoc.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := DefaultConfig()
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 5001 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxContentLength != 50<<20 {
		t.Errorf("MaxContentLength = %d, want %d", cfg.Server.MaxContentLength, 50<<20)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Workers != def.Server.Workers {
		t.Errorf("Workers = %d, want %d", cfg.Server.Workers, def.Server.Workers)
	}
	if len(cfg.Upload.AllowedExtensions) != 1 || cfg.Upload.AllowedExtensions[0] != ".docx" {
		t.Errorf("AllowedExtensions = %v", cfg.Upload.AllowedExtensions)
	}
	if cfg.Cleaner != def.Cleaner {
		t.Errorf("Cleaner = %+v, want %+v", cfg.Cleaner, def.Cleaner)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 6000
workers = 2
shutdown_timeout = "30s"

[log]
level = "debug"
`)
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CLEANDOC_LOG_LEVEL", "error")
	t.Setenv("CLEANDOC_ALLOWED_EXTENSIONS", ".docx, .docm")

	cfg, err := Load(LoadOptions{
		ConfigPath:    path,
		FlagOverrides: map[string]any{"server.workers": 8},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want value from file", cfg.Server.Host)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d, want legacy env over file", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Level = %q, want CLEANDOC_ env over legacy env", cfg.Log.Level)
	}
	if cfg.Server.Workers != 8 {
		t.Errorf("Workers = %d, want flag over file", cfg.Server.Workers)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if got := strings.Join(cfg.Upload.AllowedExtensions, ","); got != ".docx,.docm" {
		t.Errorf("AllowedExtensions = %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts func(t *testing.T) LoadOptions
		want string
	}{
		{
			name: "missing explicit file",
			opts: func(t *testing.T) LoadOptions {
				return LoadOptions{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")}
			},
			want: "stat config",
		},
		{
			name: "directory as file",
			opts: func(t *testing.T) LoadOptions { return LoadOptions{ConfigPath: t.TempDir()} },
			want: "is a directory",
		},
		{
			name: "malformed file",
			opts: func(t *testing.T) LoadOptions {
				return LoadOptions{ConfigPath: writeConfig(t, "[server\nport = ")}
			},
			want: "merge config",
		},
		{
			name: "bad env value",
			opts: func(t *testing.T) LoadOptions {
				t.Setenv("CLEANDOC_WORKERS", "many")
				return LoadOptions{}
			},
			want: "CLEANDOC_WORKERS",
		},
		{
			name: "invalid value",
			opts: func(t *testing.T) LoadOptions {
				return LoadOptions{FlagOverrides: map[string]any{"server.port": 0}}
			},
			want: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(tt.opts(t))
			if err == nil {
				t.Fatal("Load() should return error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"content length", func(c *Config) { c.Server.MaxContentLength = 0 }, "server.max_content_length"},
		{"connections", func(c *Config) { c.Server.MaxConnections = -1 }, "server.max_connections"},
		{"workers", func(c *Config) { c.Server.Workers = 0 }, "server.workers"},
		{"timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "server.shutdown_timeout"},
		{"no extensions", func(c *Config) { c.Upload.AllowedExtensions = nil }, "cannot be empty"},
		{"bare extension", func(c *Config) { c.Upload.AllowedExtensions = []string{"docx"} }, `"docx"`},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"phrase", func(c *Config) { c.Cleaner.SentinelPhrase = "(" }, "sentinel phrase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.Server.Port = 8080
	cfg.Log.File = "/var/log/cleandoc.log"

	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), "[server]") || !strings.Contains(buf.String(), "port = 8080") {
		t.Errorf("unexpected TOML:\n%s", buf.String())
	}

	loaded, err := Load(LoadOptions{ConfigPath: writeConfig(t, buf.String())})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != cfg.Server || loaded.Log != cfg.Log || loaded.Cleaner != cfg.Cleaner {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := ServerConfig{Host: "::1", Port: 5001}
	if got := c.Addr(); got != "[::1]:5001" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestCleanerConfig_Patterns(t *testing.T) {
	p, err := DefaultConfig().Cleaner.Patterns()
	if err != nil {
		t.Fatalf("Patterns() error = %v", err)
	}
	if !p.Matches("ÓRGANO DE FISCALIZACIÓN SUPERIOR") {
		t.Error("default patterns should match the institution")
	}
}
