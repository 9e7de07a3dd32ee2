package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xylographe/SE-WordListValidator/internal/config"
	"github.com/xylographe/SE-WordListValidator/internal/pipeline"
	"github.com/xylographe/SE-WordListValidator/internal/stats"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:                testKey,
		WorkerCount:           1,
		MaxQueueSize:          8,
		MaxConcurrentValidate: 2,
		MaxUploadBytes:        1 << 20,
		JobTTL:                time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, stats.NewWindow(10, time.Hour), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, srv http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/validation", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/validation", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")
}

func TestValidateJSON(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{
		"en_US_user.xml": "<words><word>b</word><word>a</word><word>b</word></words>",
	})

	rec := do(t, srv, http.MethodPost, "/api/validate", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "en_US_user.xml", resp.Filename)
	assert.Equal(t, "UserList", resp.Kind)
	assert.True(t, resp.Valid)
	assert.True(t, resp.Changed)
	assert.Equal(t, 2, resp.Items)
	assert.Equal(t, "<words>\n  <word>a</word>\n  <word>b</word>\n</words>\n", resp.Output)
	require.Len(t, resp.Diagnostics, 1)
	assert.Contains(t, resp.Diagnostics[0].Text, "Removed duplicate »b«")

	st := do(t, srv, http.MethodGet, "/api/stats/validation", nil, "")
	require.Equal(t, http.StatusOK, st.Code)
	assert.Contains(t, st.Body.String(), `"count":1`)
}

func TestValidateXMLFormat(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{
		"en_names.xml": "<names><name>Zoe</name><name>Al</name></names>",
	})

	rec := do(t, srv, http.MethodPost, "/api/validate?format=xml", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Equal(t, "<names>\n  <name>Al</name>\n  <name>Zoe</name>\n</names>\n", rec.Body.String())
}

func TestValidateStructuralError(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{
		"en_NoBreakAfterList.xml": "<NoBreakAfterList><Item/></NoBreakAfterList>",
	})

	rec := do(t, srv, http.MethodPost, "/api/validate?format=xml", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Error, "Invalid element <Item…> in <NoBreakAfterList>")
	assert.Empty(t, resp.Output)
}

func TestValidateUnsupportedFile(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "file", map[string]string{"notes.txt": "hello"})

	rec := do(t, srv, http.MethodPost, "/api/validate", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateMissingFile(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "other", map[string]string{"en_names.xml": "<names/>"})

	rec := do(t, srv, http.MethodPost, "/api/validate", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchValidateAndJobEndpoints(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartBody(t, "files", map[string]string{
		"en_US_user.xml": "<words><word>b</word><word>a</word></words>",
		"readme.md":      "# nope",
	})

	rec := do(t, srv, http.MethodPost, "/api/validate/batch", body, ct)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Jobs []struct {
			Filename string `json:"filename"`
			JobID    string `json:"job_id"`
			PollURL  string `json:"poll_url"`
			Error    string `json:"error"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)

	var jobID, pollURL string
	for _, j := range resp.Jobs {
		switch j.Filename {
		case "en_US_user.xml":
			jobID, pollURL = j.JobID, j.PollURL
		case "readme.md":
			assert.NotEmpty(t, j.Error)
		}
	}
	require.NotEmpty(t, jobID)
	assert.Equal(t, "/api/jobs/"+jobID+"/status", pollURL)

	require.Eventually(t, func() bool {
		var snap pipeline.JobSnapshot
		rec := do(t, srv, http.MethodGet, pollURL, nil, "")
		if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &snap) != nil {
			return false
		}
		return snap.Status == pipeline.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	out := do(t, srv, http.MethodGet, "/api/jobs/"+jobID+"/output", nil, "")
	require.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "<words>\n  <word>a</word>\n  <word>b</word>\n</words>\n", out.Body.String())

	html := do(t, srv, http.MethodGet, "/api/jobs/"+jobID+"/report", nil, "")
	require.Equal(t, http.StatusOK, html.Code)
	assert.Contains(t, html.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, html.Body.String(), "<table>")

	md := do(t, srv, http.MethodGet, "/api/jobs/"+jobID+"/report?format=md", nil, "")
	require.Equal(t, http.StatusOK, md.Code)
	assert.Contains(t, md.Body.String(), "| UserList | ok | 2 |")
}

func TestJobNotFound(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"status", "output", "report"} {
		rec := do(t, srv, http.MethodGet, "/api/jobs/missing/"+path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
