package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
	"github.com/xylographe/SE-WordListValidator/internal/wordlist"
	"github.com/xylographe/SE-WordListValidator/internal/workcopy"
)

// FileResult is the outcome of validating one file of a batch.
type FileResult struct {
	Path     string
	Kind     wordlist.Kind
	Items    int
	Changed  bool
	Messages []diag.Message
	Err      error
	Duration time.Duration

	// Doc is the validated model; nil on failure.
	Doc *wordlist.Document
}

// Failed reports whether the file could not be validated.
func (r FileResult) Failed() bool { return r.Err != nil }

// ValidateFunc validates one file.
type ValidateFunc func(ctx context.Context, path string) FileResult

// RunBatch applies fn to every path with at most workers running at once.
// Results are returned in the order of paths. Files not started before ctx
// is cancelled fail with the context error.
func RunBatch(ctx context.Context, paths []string, workers int, fn ValidateFunc) []FileResult {
	if workers <= 0 {
		workers = 1
	}
	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, p := range paths {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = FileResult{Path: p, Err: ctx.Err()}
			continue
		}
		if err := ctx.Err(); err != nil {
			<-sem
			results[i] = FileResult{Path: p, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(ctx, p)
		}(i, p)
	}
	wg.Wait()
	return results
}

// ValidateInPlace validates path through a working copy: the canonical form
// is written to the copy, accepted over the original, and the copy removed.
// The original is left untouched when validation fails.
func ValidateInPlace(ctx context.Context, path string) (res FileResult) {
	res = FileResult{Path: path}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	kind, err := wordlist.KindForFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Kind = kind

	wc, err := workcopy.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if err := wc.Reject(); err != nil && res.Err == nil {
			res.Err = err
		}
	}()

	original, err := wc.Read()
	if err != nil {
		res.Err = fmt.Errorf("read working copy: %w", err)
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	var rec diag.Recorder
	doc, err := wordlist.Validate(bytes.NewReader(original), kind, path, &rec)
	res.Messages = rec.Messages()
	if err != nil {
		res.Err = err
		return res
	}
	res.Doc = doc
	res.Items = doc.ItemCount()

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		res.Err = fmt.Errorf("emit %s: %w", doc.Name, err)
		return res
	}
	res.Changed = !bytes.Equal(buf.Bytes(), original)
	if !res.Changed {
		return res
	}
	if err := wc.Write(buf.Bytes()); err != nil {
		res.Err = err
		return res
	}
	if err := wc.Accept(false); err != nil {
		res.Err = err
	}
	return res
}
