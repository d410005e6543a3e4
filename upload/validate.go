// Package upload validates files received for cleaning.
package upload

import (
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/OmarSalvatierra99/cleandoc/format"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxSize is the default per-file size limit, 50 MiB.
const DefaultMaxSize int64 = 50 << 20

// DefaultExtensions are the extensions accepted when none are configured.
var DefaultExtensions = []string{".docx"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// asciiFold decomposes characters and drops everything outside ASCII, so
// "Cédula" becomes "Cedula".
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// SanitizeFilename reduces name to a safe base name made of ASCII letters,
// digits, '_', '.' and '-'. Path separators become word breaks, so
// "../../etc/passwd" becomes "etc_passwd".
func SanitizeFilename(name string) (string, error) {
	if name == "" {
		return "", newError(InvalidFile, "El nombre del archivo está vacío")
	}

	safe, _, err := transform.String(asciiFold, name)
	if err != nil {
		return "", newError(InvalidFile, "Nombre de archivo inválido: %s", name)
	}
	safe = strings.NewReplacer("/", " ", `\`, " ").Replace(safe)
	safe = strings.Join(strings.Fields(safe), "_")
	safe = unsafeChars.ReplaceAllString(safe, "")
	safe = strings.Trim(safe, "._")

	if safe != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(safe, ".", 2)[0])] {
		safe = "_" + safe
	}
	if safe == "" {
		return "", newError(InvalidFile, "Nombre de archivo inválido: %s", name)
	}
	return safe, nil
}

// ValidateExtension checks that name ends in one of allowed, ignoring case.
// An empty allowed list means DefaultExtensions.
func ValidateExtension(name string, allowed []string) error {
	if name == "" {
		return newError(InvalidFile, "El nombre del archivo está vacío")
	}
	if len(allowed) == 0 {
		allowed = DefaultExtensions
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}
	return newError(UnsupportedType, "Extensión '%s' no permitida. Solo se permiten: %s",
		ext, strings.Join(allowed, ", "))
}

// ValidateSize checks that size does not exceed limit. A non-positive
// limit means DefaultMaxSize.
func ValidateSize(size, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if size > limit {
		return newError(TooLarge, "El archivo (%.2f MB) excede el tamaño máximo permitido (%.2f MB)",
			megabytes(size), megabytes(limit))
	}
	return nil
}

// Validate sanitises name and checks its extension and the file size. It
// returns the sanitised name.
func Validate(name string, size, limit int64, allowed []string) (string, error) {
	if name == "" {
		return "", newError(InvalidFile, "No se proporcionó un archivo válido")
	}
	safe, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}
	if err := ValidateExtension(safe, allowed); err != nil {
		return "", err
	}
	if err := ValidateSize(size, limit); err != nil {
		return "", err
	}
	return safe, nil
}

// IsDOCXContent reports whether r starts with a ZIP signature. The reader
// is rewound to the start before returning. Read errors report false.
func IsDOCXContent(r io.ReadSeeker) bool {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	header := make([]byte, 4)
	n, _ := io.ReadFull(r, header)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	return format.IsZIP(header[:n])
}

func megabytes(n int64) float64 {
	return float64(n) / (1 << 20)
}
