package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/OmarSalvatierra99/cleandoc/clean"
	"github.com/OmarSalvatierra99/cleandoc/internal/config"
	"github.com/OmarSalvatierra99/cleandoc/internal/logging"
	"github.com/OmarSalvatierra99/cleandoc/internal/server"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagHost           string
	flagPort           int
	flagWorkers        int
	flagMaxConnections int
	flagDebug          bool
	flagLogLevel       string
	flagLogFile        string
	flagUploadFolder   string
)

// buildOverrides maps the flags that were given onto config keys.
func buildOverrides() map[string]any {
	m := make(map[string]any)
	if flagHost != "" {
		m["server.host"] = flagHost
	}
	if flagPort > 0 {
		m["server.port"] = flagPort
	}
	if flagWorkers > 0 {
		m["server.workers"] = flagWorkers
	}
	if flagMaxConnections > 0 {
		m["server.max_connections"] = flagMaxConnections
	}
	if flagDebug {
		m["server.debug"] = true
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLogFile != "" {
		m["log.file"] = flagLogFile
	}
	if flagUploadFolder != "" {
		m["upload.folder"] = flagUploadFolder
	}
	return m
}

func loadConfig() (config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigPath:    flagConfig,
		FlagOverrides: buildOverrides(),
	})
}

// newCleaner builds the logger and cleaner described by cfg. The closer
// releases the log file, if any.
func newCleaner(cfg config.Config) (*clean.Cleaner, *log.Logger, io.Closer, error) {
	opts := logging.DefaultOptions()
	opts.Level = cfg.Log.Level
	opts.JSON = cfg.Log.JSON
	if cfg.Server.Debug {
		opts.Level = "debug"
	}
	logger, closer, err := logging.NewWithFile(cfg.Log.File, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	patterns, err := cfg.Cleaner.Patterns()
	if err != nil {
		closer.Close()
		return nil, nil, nil, err
	}
	return clean.New(clean.WithPatterns(patterns), clean.WithLogger(logger)), logger, closer, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cleaner, logger, closer, err := newCleaner(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		defer closer.Close()

		srv := server.New(server.Options{
			Server:  cfg.Server,
			Upload:  cfg.Upload,
			Cleaner: cleaner,
			Logger:  logger,
			Version: version,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting CleanDoc", "version", version, "addr", cfg.Server.Addr(),
			"workers", cfg.Server.Workers, "debug", cfg.Server.Debug)
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("server stopped", "err", err)
			exitCode = ExitRuntimeError
			return nil
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&flagHost, "host", "", "Interface to listen on")
	f.IntVarP(&flagPort, "port", "p", 0, "Port to listen on")
	f.IntVar(&flagWorkers, "workers", 0, "Documents cleaned in parallel per request")
	f.IntVar(&flagMaxConnections, "max-connections", 0, "Maximum simultaneous connections (0 = unlimited)")
	f.BoolVar(&flagDebug, "debug", false, "Debug logging, no HSTS header")
	f.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&flagLogFile, "log-file", "", "Also append logs to this file")
	f.StringVar(&flagUploadFolder, "upload-folder", "", "Folder for temporary archives")
}
