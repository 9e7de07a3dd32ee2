package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
	"github.com/xylographe/SE-WordListValidator/internal/pipeline"
	"github.com/xylographe/SE-WordListValidator/internal/wordlist"
)

// validateResponse is the body of a synchronous validation.
type validateResponse struct {
	Filename    string         `json:"filename"`
	Kind        string         `json:"kind"`
	Valid       bool           `json:"valid"`
	Changed     bool           `json:"changed"`
	Items       int            `json:"items"`
	Diagnostics []diag.Message `json:"diagnostics"`
	Output      string         `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	kind, err := wordlist.KindForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.readUpload(file)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	select {
	case s.validateSem <- struct{}{}:
		defer func() { <-s.validateSem }()
	case <-r.Context().Done():
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	log := s.log.With("file", filename, "kind", kind.String())
	var rec diag.Recorder
	start := time.Now()
	doc, err := wordlist.Validate(bytes.NewReader(data), kind, filename, diag.Tee(&rec, diag.SlogSink{Log: log}))
	var buf bytes.Buffer
	if err == nil {
		_, err = doc.WriteTo(&buf)
	}
	if s.stats != nil {
		s.stats.Record(time.Since(start), err != nil)
	}

	resp := validateResponse{
		Filename:    filename,
		Kind:        kind.String(),
		Diagnostics: append([]diag.Message{}, rec.Messages()...),
	}
	if err != nil {
		var se *wordlist.StructuralError
		if !errors.As(err, &se) {
			log.Error("validation error", "error", err)
		}
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	out := buf.Bytes()
	resp.Valid = true
	resp.Changed = !bytes.Equal(out, data)
	resp.Items = doc.ItemCount()

	if r.URL.Query().Get("format") == "xml" {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Write(out)
		return
	}
	resp.Output = string(out)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatchValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if _, err := wordlist.KindForFile(filename); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		data, err := s.openUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"job_id":   job.ID,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) openUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open file")
	}
	defer f.Close()
	return s.readUpload(f)
}

// readUpload reads at most MaxUploadBytes.
func (s *Server) readUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
