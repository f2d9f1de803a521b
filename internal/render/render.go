// Package render turns published results.json documents into the
// static HTML served from the pages branch: one report per platform, a
// platform switcher per branch and a branch switcher at the root.
//
// Rendering is strictly best-effort for callers: the publisher logs
// and continues on any error here, so the raw results are still merged
// and served without navigation chrome.
package render

import (
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/testwell-ci/testpages/internal/assets"
	"github.com/testwell-ci/testpages/internal/resultset"
)

// Renderer renders report pages from a template filesystem. The zero
// base points at the templates embedded by main.
type Renderer struct {
	FS   fs.FS
	Base string
}

// New returns a Renderer over the embedded templates. When no assets
// were installed (library use outside the CLI binary) every render
// call degrades to an error the caller is expected to log and ignore.
func New() *Renderer {
	r := &Renderer{Base: "data/templates/report"}
	if efs := assets.GetData(); efs != nil {
		r.FS = efs
	}
	return r
}

func (r *Renderer) load(name string) (*template.Template, error) {
	if r.FS == nil {
		return nil, errors.New("report templates unavailable")
	}
	raw, err := fs.ReadFile(r.FS, path.Join(r.Base, name))
	if err != nil {
		return nil, errors.Wrapf(err, "loading template %s", name)
	}
	return template.New(name).Parse(string(raw))
}

type platformPage struct {
	RepoID     string
	PlatformID string
	Verdict    string
	CommitHash string
	ShortHash  string
	Timestamp  string
	Summary    *resultset.Summary
	Tests      []resultset.TestCase

	// Duration statistics over the individual tests, present only
	// when the runner recorded per-test timings.
	HasDurations bool
	DurationMean string
	DurationP95  string
}

// Platform writes index.html for one platform directory from its
// results.json.
func (r *Renderer) Platform(platformDir, repoID, platformID string) error {
	doc, err := resultset.ReadDocument(filepath.Join(platformDir, resultset.ResultsFileName))
	if err != nil {
		return err
	}

	page := platformPage{
		RepoID:     repoID,
		PlatformID: platformID,
		Verdict:    doc.Verdict().String(),
		CommitHash: doc.CommitHash,
		ShortHash:  shortHash(doc.CommitHash),
		Timestamp:  doc.Timestamp,
		Summary:    doc.Summary,
		Tests:      doc.Tests,
	}

	var durations []float64
	for _, tc := range doc.Tests {
		if tc.DurationSeconds > 0 {
			durations = append(durations, tc.DurationSeconds)
		}
	}
	if len(durations) > 0 {
		mean, err := stats.Mean(durations)
		if err == nil {
			page.DurationMean = formatSeconds(mean)
			page.HasDurations = true
		}
		p95, err := stats.Percentile(durations, 95)
		if err == nil {
			page.DurationP95 = formatSeconds(p95)
		}
	}

	tpl, err := r.load("platform.html")
	if err != nil {
		return err
	}
	return writePage(tpl, filepath.Join(platformDir, "index.html"), page)
}

type platformTab struct {
	ID      string
	Verdict string
}

type branchPage struct {
	RepoID    string
	Branch    string
	Platforms []platformTab
	HasCharts bool
}

// BranchIndex writes the platform switcher for one branch directory,
// covering every platform subdir that holds a results.json, and a
// companion charts page when at least one verdict is known.
func (r *Renderer) BranchIndex(branchDir, repoID string) error {
	tpl, err := r.load("branch.html")
	if err != nil {
		return err
	}

	page := branchPage{
		RepoID: repoID,
		Branch: filepath.Base(branchDir),
	}

	verdicts := map[string]resultset.Verdict{}
	for _, pid := range resultset.PlatformIDs() {
		resultsPath := filepath.Join(branchDir, pid, resultset.ResultsFileName)
		doc, err := resultset.ReadDocument(resultsPath)
		if err != nil {
			continue
		}
		verdicts[pid] = doc.Verdict()
		page.Platforms = append(page.Platforms, platformTab{ID: pid, Verdict: doc.Verdict().String()})
	}

	if len(verdicts) > 0 {
		if err := writeBranchCharts(filepath.Join(branchDir, "charts.html"), page.Branch, repoID, verdicts); err == nil {
			page.HasCharts = true
		}
	}

	return writePage(tpl, filepath.Join(branchDir, "index.html"), page)
}

type rootPage struct {
	RepoID   string
	Branches []string
}

// RootIndex writes the branch switcher at the store root. Branch
// candidates are subdirectories holding an index.html or at least one
// platform subtree.
func (r *Renderer) RootIndex(storeRoot, repoID string) error {
	entries, err := os.ReadDir(storeRoot)
	if err != nil {
		return errors.Wrapf(err, "scanning store root %s", storeRoot)
	}

	page := rootPage{RepoID: repoID}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if isBranchDir(filepath.Join(storeRoot, entry.Name())) {
			page.Branches = append(page.Branches, entry.Name())
		}
	}
	sort.Strings(page.Branches)

	tpl, err := r.load("root.html")
	if err != nil {
		return err
	}
	return writePage(tpl, filepath.Join(storeRoot, "index.html"), page)
}

func isBranchDir(dir string) bool {
	for _, pid := range resultset.PlatformIDs() {
		if _, err := os.Stat(filepath.Join(dir, pid)); err == nil {
			return true
		}
	}
	return false
}

func writePage(tpl *template.Template, dest string, data interface{}) error {
	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	defer f.Close()
	if err := tpl.Execute(f, data); err != nil {
		return errors.Wrapf(err, "rendering %s", dest)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "s"
}
