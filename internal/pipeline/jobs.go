package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// JobStatus represents the state of a validation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusValidating JobStatus = "validating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the validation of one uploaded dictionary.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Kind     string    `json:"kind"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	output      []byte
	items       int
	changed     bool
	diagnostics []diag.Message
	errors      []string
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of jobs held.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	hash := ContentHashHex(data)
	return &Job{
		ID:          ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", filename, hash, now.UnixNano())))[:20],
		Filename:    filename,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetKind records the dictionary kind resolved from the file name.
func (j *Job) SetKind(kind string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Kind = kind
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetResult stores the canonical output and the diagnostics of a finished
// validation. The input bytes are released.
func (j *Job) SetResult(output []byte, items int, msgs []diag.Message) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.output = output
	j.items = items
	j.changed = output != nil && string(output) != string(j.fileData)
	j.diagnostics = msgs
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Output returns the canonical document, or nil when validation failed or
// has not finished.
func (j *Job) Output() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string         `json:"job_id"`
	Filename    string         `json:"filename"`
	Kind        string         `json:"kind"`
	Status      JobStatus      `json:"status"`
	Phase       string         `json:"phase"`
	Valid       bool           `json:"valid"`
	Changed     bool           `json:"changed"`
	Items       int            `json:"items"`
	Diagnostics []diag.Message `json:"diagnostics"`
	Errors      []string       `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	msgs := append([]diag.Message{}, j.diagnostics...)
	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Kind:        j.Kind,
		Status:      j.Status,
		Phase:       j.Phase,
		Valid:       j.Status == StatusCompleted && j.output != nil,
		Changed:     j.changed,
		Items:       j.items,
		Diagnostics: msgs,
		Errors:      errs,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
