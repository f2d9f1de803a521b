package resultset

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ResultsFileName is the document every platform directory must carry
// for the directory to count as published test output.
const ResultsFileName = "results.json"

// Verdict is the tri-state pass/fail outcome of one platform run.
// Older results documents predate the top-level success field, so the
// outcome is not always known.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictPassed
	VerdictFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "pass"
	case VerdictFailed:
		return "fail"
	default:
		return "unknown"
	}
}

// Summary mirrors the summary block written by the test runner.
type Summary struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
	Passed int `json:"passed,omitempty"`
}

// TestCase is one executed test within a platform run. Duration is
// optional; runners that do not time individual tests leave it zero.
type TestCase struct {
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Document is the decoded results.json for one (branch, platform) run.
type Document struct {
	Success    *bool      `json:"success,omitempty"`
	CommitHash string     `json:"commit_hash"`
	Timestamp  string     `json:"timestamp"`
	Summary    *Summary   `json:"summary,omitempty"`
	Tests      []TestCase `json:"tests,omitempty"`

	// verdict is resolved once when the document is decoded.
	verdict Verdict
}

// Verdict reports the resolved outcome for the run.
func (d *Document) Verdict() Verdict {
	return d.verdict
}

// resolveVerdict derives the outcome. An explicit success field wins;
// legacy documents fall back to the summary counters when at least one
// test ran. Everything else is unknown.
func resolveVerdict(d *Document) Verdict {
	if d.Success != nil {
		if *d.Success {
			return VerdictPassed
		}
		return VerdictFailed
	}
	if d.Summary != nil && d.Summary.Total > 0 {
		if d.Summary.Failed == 0 {
			return VerdictPassed
		}
		return VerdictFailed
	}
	return VerdictUnknown
}

// DecodeDocument parses a results.json payload.
func DecodeDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "decoding results document")
	}
	doc.verdict = resolveVerdict(doc)
	return doc, nil
}

// ReadDocument loads and parses a results.json from disk.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return DecodeDocument(data)
}
