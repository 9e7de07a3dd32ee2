package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xylographe/SE-WordListValidator/internal/pipeline"
	"github.com/xylographe/SE-WordListValidator/internal/report"
)

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

// finished writes an error and returns false while the job is still queued
// or running.
func finished(w http.ResponseWriter, snap pipeline.JobSnapshot) bool {
	switch snap.Status {
	case pipeline.StatusCompleted, pipeline.StatusFailed:
		return true
	}
	jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
	return false
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobOutput(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	if !finished(w, snap) {
		return
	}
	out := job.Output()
	if out == nil {
		jsonError(w, "validation failed", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snap.Filename))
	w.Write(out)
}

func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	if !finished(w, snap) {
		return
	}

	entry := report.Entry{
		File:     snap.Filename,
		Kind:     snap.Kind,
		Valid:    snap.Valid,
		Items:    snap.Items,
		Changed:  snap.Changed,
		Messages: snap.Diagnostics,
	}
	if len(snap.Errors) > 0 {
		entry.Error = snap.Errors[0]
	}
	md := report.Build("Validation of "+snap.Filename, []report.Entry{entry})

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
		return
	}
	html, err := report.RenderHTML(md)
	if err != nil {
		s.log.Error("render report", "job_id", snap.ID, "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
