// Package report aggregates per-variant outcomes of a pipeline run.
package report

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"
)

// SupportedReportVersion is the current schema version.
const SupportedReportVersion = 1

// Outcome records one (source, variant) result. Error is empty on success.
type Outcome struct {
	Source  string `json:"source"`
	Variant string `json:"variant"`
	Path    string `json:"path,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Hash    string `json:"hash,omitempty"` // xxhash64 of the encoded bytes
	Error   string `json:"error,omitempty"`
}

// OK reports whether the variant was produced.
func (o Outcome) OK() bool { return o.Error == "" }

// Stats aggregates run metrics.
type Stats struct {
	Sources          int   `json:"sources"`
	Variants         int   `json:"variants"`
	Succeeded        int   `json:"succeeded"`
	Failed           int   `json:"failed"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
}

// Report is the full run record. Adds are safe for concurrent use;
// outcomes are keyed (source, variant) and order-independent until
// finalized.
type Report struct {
	Version     int       `json:"version"`
	GeneratedAt string    `json:"generated_at"`
	Workers     int       `json:"workers,omitempty"`
	Outcomes    []Outcome `json:"outcomes"`
	Stats       Stats     `json:"stats"`

	mu sync.Mutex
}

// New creates an empty report.
func New(workers int) *Report {
	return &Report{
		Version:     SupportedReportVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Workers:     workers,
	}
}

// Add appends one outcome. Safe to call from concurrent workers.
func (r *Report) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, o)
}

// Finalize sorts outcomes by (source, variant) and recomputes stats.
// Call once, after all workers have finished.
func (r *Report) Finalize() {
	sort.Slice(r.Outcomes, func(i, j int) bool {
		a, b := r.Outcomes[i], r.Outcomes[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Variant < b.Variant
	})

	var s Stats
	seen := map[string]bool{}
	for _, o := range r.Outcomes {
		if !seen[o.Source] {
			seen[o.Source] = true
			s.Sources++
		}
		s.Variants++
		if o.OK() {
			s.Succeeded++
			s.TotalOutputBytes += o.Size
		} else {
			s.Failed++
		}
	}
	r.Stats = s
}

// Failures returns the failed outcomes, in finalized order.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// WriteJSON serializes the report to a JSON file.
func WriteJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
