package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OmarSalvatierra99/cleandoc/bundle"
	"github.com/OmarSalvatierra99/cleandoc/clean"
	"github.com/OmarSalvatierra99/cleandoc/upload"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagOutDir string
	flagZip    string
	flagStats  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean FILE...",
	Short: "Clean documents on disk",
	Long: "Clean writes limpia_<name> next to each input, or into --out. With --zip\n" +
		"the cleaned documents and their reports are written to one archive instead.",
	Args: cobra.MinimumNArgs(1),
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

		files, failed := cleanFiles(cmd.Context(), cleaner, args, cfg.Upload.AllowedExtensions, cfg.Server.Workers)
		for _, f := range failed {
			fmt.Fprintf(os.Stderr, "Error: %v\n", f)
		}
		if len(files) == 0 {
			exitCode = ExitRuntimeError
			return nil
		}

		written, err := writeResults(files)
		if err != nil {
			logger.Error("writing results", "err", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			s := f.Stats
			fmt.Fprintf(out, "%s: %d imágenes, %d párrafos limpiados, %d cuadros de texto, firma eliminada: %v\n",
				bundle.OutputName(f.Name), s.ImagesRemoved, s.InstitutionalParagraphsCleaned,
				s.TextboxesCleaned, s.SignatureSectionRemoved)
			if s.HasErrors() && exitCode == ExitSuccess {
				exitCode = ExitWarnings
			}
		}
		for _, path := range written {
			fmt.Fprintln(out, path)
		}
		if len(failed) > 0 {
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

// cleanFiles cleans paths concurrently. Documents that cannot be read or
// cleaned are returned as errors; the rest keep argument order.
func cleanFiles(ctx context.Context, cleaner *clean.Cleaner, paths, allowed []string, workers int) ([]bundle.File, []error) {
	results := make([]*bundle.File, len(paths))
	errs := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := cleanFile(ctx, cleaner, path, allowed)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			results[i] = f
			return nil
		})
	}
	_ = g.Wait()

	var files []bundle.File
	var failed []error
	for i := range paths {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		files = append(files, *results[i])
	}
	return files, failed
}

func cleanFile(ctx context.Context, cleaner *clean.Cleaner, path string, allowed []string) (*bundle.File, error) {
	name, err := upload.SanitizeFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if err := upload.ValidateExtension(name, allowed); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := cleaner.Clean(ctx, data, name)
	if err != nil {
		return nil, err
	}
	return &bundle.File{Name: name, Data: res.Data, Stats: res.Stats}, nil
}

// writeResults writes the cleaned documents, or the archive when --zip is
// set, and returns the paths written.
func writeResults(files []bundle.File) ([]string, error) {
	dir := flagOutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}

	if flagZip != "" {
		path := filepath.Join(dir, flagZip)
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := bundle.WriteArchive(f, files); err != nil {
			f.Close()
			return nil, err
		}
		return []string{path}, f.Close()
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, bundle.OutputName(f.Name))
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			return written, err
		}
		written = append(written, path)

		if flagStats {
			path := filepath.Join(dir, bundle.StatsName(f.Name))
			if err := os.WriteFile(path, []byte(bundle.FormatStats(f.Name, f.Stats)), 0644); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func init() {
	f := cleanCmd.Flags()
	f.StringVarP(&flagOutDir, "out", "o", "", "Output directory (default: current directory)")
	f.StringVar(&flagZip, "zip", "", "Write one archive with this name instead of individual files")
	f.BoolVar(&flagStats, "stats", false, "Write a report next to each cleaned document")
}
