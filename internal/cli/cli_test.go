package cli

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OmarSalvatierra99/cleandoc/docx"
	"github.com/OmarSalvatierra99/cleandoc/internal/testutil"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagConfig = ""
	flagHost = ""
	flagPort = 0
	flagWorkers = 0
	flagMaxConnections = 0
	flagDebug = false
	flagLogLevel = ""
	flagLogFile = ""
	flagUploadFolder = ""
	flagOutDir = ""
	flagZip = ""
	flagStats = false
	flagForce = false
	exitCode = ExitSuccess
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v", args, err)
	}
	return out.String()
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()

	data := testutil.BuildDOCX(t, testutil.DOCX{
		Body: testutil.P("Hello") + testutil.P("ÓRGANO DE FISCALIZACIÓN SUPERIOR") +
			testutil.P("World") + testutil.P("Elaboró: A"),
		Headers: []string{testutil.Drawing("logo")},
	})
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagHost = "127.0.0.1"
	flagPort = 8080
	flagWorkers = 2
	flagMaxConnections = 16
	flagDebug = true
	flagLogLevel = "debug"
	flagLogFile = "/tmp/cleandoc.log"
	flagUploadFolder = "/tmp/up"
	defer resetFlags()

	m := buildOverrides()
	want := map[string]any{
		"server.host":            "127.0.0.1",
		"server.port":            8080,
		"server.workers":         2,
		"server.max_connections": 16,
		"server.debug":           true,
		"log.level":              "debug",
		"log.file":               "/tmp/cleandoc.log",
		"upload.folder":          "/tmp/up",
	}
	if len(m) != len(want) {
		t.Fatalf("buildOverrides() = %v, want %v", m, want)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %v, want %v", k, m[k], v)
		}
	}
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	resetFlags()
	flagPort = 9090
	defer resetFlags()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
}

// --- command tests ---

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	if out != "cleandoc version "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	out := execute(t, "config")
	for _, want := range []string{"[server]", "port = 5001", "[cleaner]", "org_phrase"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleandoc.toml")

	out := execute(t, "config", "init", path)
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}

	out = execute(t, "--config", path, "config")
	if !strings.Contains(out, "port = 5001") {
		t.Errorf("config from generated file:\n%s", out)
	}
}

func TestCleanCommand(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := writeSample(t, in, "Cédula uno.docx")

	stdout := execute(t, "clean", path, "-o", out, "--stats")
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if !strings.Contains(stdout, "limpia_Cedula_uno.docx: 1 imágenes") {
		t.Errorf("summary = %q", stdout)
	}

	doc, err := docx.Open(filepath.Join(out, "limpia_Cedula_uno.docx"))
	if err != nil {
		t.Fatalf("opening cleaned document: %v", err)
	}
	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.Text())
	}
	if strings.Join(texts, "|") != "Hello|World" {
		t.Errorf("body = %q", texts)
	}

	report, err := os.ReadFile(filepath.Join(out, "limpia_Cedula_uno.docx_stats.txt"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(report), "Completado exitosamente") {
		t.Errorf("report:\n%s", report)
	}
}

func TestCleanCommand_Zip(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := writeSample(t, in, "a.docx")
	b := writeSample(t, in, "b.docx")

	execute(t, "clean", a, b, "-o", out, "--zip", "lote.zip")

	zr, err := zip.OpenReader(filepath.Join(out, "lote.zip"))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 4 {
		t.Errorf("archive has %d entries, want 4", len(zr.File))
	}
	if zr.File[0].Name != "limpia_a.docx" || zr.File[2].Name != "limpia_b.docx" {
		t.Errorf("unexpected order: %s, %s", zr.File[0].Name, zr.File[2].Name)
	}
}

func TestCleanCommand_Failures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	good := writeSample(t, in, "good.docx")
	bad := filepath.Join(in, "bad.docx")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	pdf := filepath.Join(in, "x.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	execute(t, "clean", good, bad, pdf, "-o", out)

	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
	if _, err := os.Stat(filepath.Join(out, "limpia_good.docx")); err != nil {
		t.Errorf("good document should still be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "limpia_bad.docx")); !os.IsNotExist(err) {
		t.Errorf("bad document should not be written, stat err = %v", err)
	}
}

func TestCleanCommand_RequiresFiles(t *testing.T) {
	resetFlags()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"clean"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err == nil {
		t.Error("clean without files should fail")
	}
}
