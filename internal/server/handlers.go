package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/OmarSalvatierra99/cleandoc/bundle"
	"github.com/OmarSalvatierra99/cleandoc/format"
	"github.com/OmarSalvatierra99/cleandoc/upload"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileField is the multipart field carrying the documents.
const FileField = "archivo"

// multipartMemory is how much of a form is kept in memory before parts
// spill to temporary files.
const multipartMemory = 32 << 20

//go:embed web/index.html
var webFS embed.FS

var indexTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.index.Execute(&buf, map[string]interface{}{
		"MaxMB":      s.cfg.MaxContentLength >> 20,
		"Extensions": strings.Join(s.upload.AllowedExtensions, ","),
		"Version":    s.version,
	})
	if err != nil {
		s.logger.Error("rendering index", "err", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "CleanDoc",
		Version: s.version,
	})
}

// job is one validated upload waiting to be cleaned.
type job struct {
	name string
	data []byte
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	batchID := uuid.NewString()
	logger := s.logger.With("batch", batchID)
	w.Header().Set("X-CleanDoc-Batch-ID", batchID)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentLength)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			logger.Warn("request too large", "limit", s.cfg.MaxContentLength)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   "Archivo demasiado grande",
				Message: fmt.Sprintf("El archivo excede el tamaño máximo permitido de %d MB", s.cfg.MaxContentLength>>20),
			})
			return
		}
		logger.Warn("unreadable form", "err", err)
		writeError(w, &upload.Error{Kind: upload.NoFiles, Message: "No se proporcionaron archivos"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var headers []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[FileField] {
		if fh.Filename == "" {
			logger.Warn("empty file received, skipping")
			continue
		}
		headers = append(headers, fh)
	}
	if len(headers) == 0 {
		writeError(w, &upload.Error{Kind: upload.NoFiles, Message: "No se proporcionaron archivos"})
		return
	}
	logger.Info("files received", "count", len(headers))

	jobs, err := s.validate(logger, headers)
	if err != nil {
		logger.Warn("validation failed", "err", err)
		writeError(w, err)
		return
	}

	files := s.cleanAll(r, logger, jobs)
	if len(files) == 0 {
		writeError(w, &upload.Error{Kind: upload.InvalidFile, Message: "No se pudieron procesar archivos válidos"})
		return
	}

	if len(files) == 1 {
		s.sendDocument(w, logger, files[0])
		return
	}
	s.sendArchive(w, r, logger, files)
}

// validate checks every upload before any is cleaned. A name, extension
// or size problem fails the whole request; content that is not a ZIP
// package is skipped.
func (s *Server) validate(logger *log.Logger, headers []*multipart.FileHeader) ([]job, error) {
	jobs := make([]job, 0, len(headers))
	for _, fh := range headers {
		name, err := upload.Validate(fh.Filename, fh.Size, s.cfg.MaxContentLength, s.upload.AllowedExtensions)
		if err != nil {
			return nil, err
		}

		data, ok, err := readUpload(fh)
		if err != nil {
			return nil, &upload.Error{Kind: upload.InvalidFile, Message: fmt.Sprintf("No se pudo leer el archivo: %s", name)}
		}
		if !ok {
			logger.Warn("not a DOCX package, skipping", "file", name)
			continue
		}
		jobs = append(jobs, job{name: name, data: data})
	}
	return jobs, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, bool, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if !upload.IsDOCXContent(f) {
		return nil, false, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// cleanAll cleans jobs concurrently, at most s.cfg.Workers at a time. A
// document that fails is logged and left out; the others are returned in
// upload order.
func (s *Server) cleanAll(r *http.Request, logger *log.Logger, jobs []job) []bundle.File {
	results := make([]*bundle.File, len(jobs))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.cfg.Workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			res, err := s.cleaner.Clean(ctx, j.data, j.name)
			if err != nil {
				logger.Error("processing failed", "file", j.name, "err", err)
				return nil
			}
			logger.Info("file processed", append([]interface{}{"file", j.name}, res.Stats.Fields()...)...)
			results[i] = &bundle.File{Name: res.Filename, Data: res.Data, Stats: res.Stats}
			return nil
		})
	}
	_ = g.Wait()

	files := make([]bundle.File, 0, len(results))
	for _, f := range results {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files
}

func (s *Server) sendDocument(w http.ResponseWriter, logger *log.Logger, f bundle.File) {
	name := bundle.OutputName(f.Name)
	logger.Info("sending document", append([]interface{}{"file", name}, f.Stats.Fields()...)...)

	h := w.Header()
	h.Set("Content-Type", format.DOCX.MimeType())
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(f.Data)))
	h.Set("X-CleanDoc-Images-Removed", strconv.Itoa(f.Stats.ImagesRemoved))
	h.Set("X-CleanDoc-Paragraphs-Cleaned", strconv.Itoa(f.Stats.InstitutionalParagraphsCleaned))
	h.Set("X-CleanDoc-Signature-Removed", strconv.FormatBool(f.Stats.SignatureSectionRemoved))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

// sendArchive spools the archive to the upload folder and streams it back.
func (s *Server) sendArchive(w http.ResponseWriter, r *http.Request, logger *log.Logger, files []bundle.File) {
	spool, err := os.CreateTemp(s.upload.Folder, "cleandoc-*.zip")
	if err != nil {
		logger.Error("creating archive", "err", err)
		writeError(w, &upload.Error{Kind: upload.Processing, Message: "Error creando archivo ZIP"})
		return
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	if err := bundle.WriteArchive(spool, files); err != nil {
		logger.Error("writing archive", "err", err)
		writeError(w, &upload.Error{Kind: upload.Processing, Message: "Error creando archivo ZIP"})
		return
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		logger.Error("rewinding archive", "err", err)
		writeError(w, &upload.Error{Kind: upload.Processing, Message: "Error creando archivo ZIP"})
		return
	}

	totals := bundle.Totals(files)
	logger.Info("sending archive", totals.Fields()...)

	h := w.Header()
	h.Set("Content-Type", format.ZIP.MimeType())
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": bundle.ArchiveName}))
	h.Set("X-CleanDoc-Total-Files", strconv.Itoa(totals.Files))
	h.Set("X-CleanDoc-Total-Images-Removed", strconv.Itoa(totals.ImagesRemoved))
	h.Set("X-CleanDoc-Total-Paragraphs-Cleaned", strconv.Itoa(totals.ParagraphsCleaned))
	http.ServeContent(w, r, bundle.ArchiveName, time.Now(), spool)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
