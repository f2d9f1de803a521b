// Package resultset locates and models the local output of one test
// run: a directory named {repo}-{HHMM} holding one subdirectory per
// source branch, each with one subdirectory per platform.
package resultset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrNotFound indicates no result set directory matched the repository.
var ErrNotFound = errors.New("no test results found")

// defaultPlatforms is the closed set of execution targets the test
// runner can produce. The list can be overridden with the "platforms"
// config key; new targets normally ship as a config change, not code.
var defaultPlatforms = []string{
	"linux-cpu", "linux-gpu",
	"windows-cpu", "windows-gpu",
	"windows-portable-cpu", "windows-portable-gpu",
	"macos-cpu", "macos-gpu",
}

// PlatformIDs returns the recognized platform identifiers.
func PlatformIDs() []string {
	if configured := viper.GetStringSlice("platforms"); len(configured) > 0 {
		return configured
	}
	return defaultPlatforms
}

// ResultSet is one located test run directory.
type ResultSet struct {
	// Dir is the absolute path of the run directory.
	Dir string
	// RepoID is the repository portion of the directory name.
	RepoID string
}

// Branch is one source-branch subtree inside a ResultSet.
type Branch struct {
	Name string
	Dir  string
}

// normalizeRepoID strips separators so "Repo_Name" and "repo-name"
// compare equal, matching however the runner happened to name the dir.
func normalizeRepoID(id string) string {
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, "-", "")
	return strings.ReplaceAll(id, "_", "")
}

// Locate finds the result set for repoID under root. When timestamp is
// empty the most recently modified match wins; otherwise the run
// directory must carry exactly that timestamp suffix.
func Locate(root, repoID, timestamp string) (*ResultSet, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "results root %s unavailable", root)
	}

	want := normalizeRepoID(repoID)
	type candidate struct {
		dir   string
		mtime int64
	}
	var candidates []candidate

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Run directories are named {repo}-{HHMM}; the repo part may
		// itself contain hyphens, so split on the last one.
		idx := strings.LastIndex(entry.Name(), "-")
		if idx <= 0 {
			continue
		}
		base, suffix := entry.Name()[:idx], entry.Name()[idx+1:]
		if normalizeRepoID(base) != want {
			continue
		}
		full := filepath.Join(root, entry.Name())
		if timestamp != "" {
			if suffix == timestamp {
				return &ResultSet{Dir: full, RepoID: repoID}, nil
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{dir: full, mtime: info.ModTime().UnixNano()})
	}

	if len(candidates) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "repository %s", repoID)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].mtime > candidates[j].mtime
	})
	return &ResultSet{Dir: candidates[0].dir, RepoID: repoID}, nil
}

// Branches scans the run directory for source-branch subtrees. A
// directory counts as a branch when it holds at least one recognized
// platform subdirectory.
func (rs *ResultSet) Branches() ([]Branch, error) {
	entries, err := os.ReadDir(rs.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning result set %s", rs.Dir)
	}

	var branches []Branch
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(rs.Dir, entry.Name())
		for _, pid := range PlatformIDs() {
			if _, err := os.Stat(filepath.Join(dir, pid)); err == nil {
				branches = append(branches, Branch{Name: entry.Name(), Dir: dir})
				break
			}
		}
	}
	return branches, nil
}

// Platforms lists the platform IDs under the branch that carry a
// results.json, in the enumeration order.
func (b Branch) Platforms() []string {
	var found []string
	for _, pid := range PlatformIDs() {
		if _, err := os.Stat(filepath.Join(b.Dir, pid, ResultsFileName)); err == nil {
			found = append(found, pid)
		}
	}
	return found
}

// PlatformDir returns the directory holding one platform's output.
func (b Branch) PlatformDir(platformID string) string {
	return filepath.Join(b.Dir, platformID)
}
