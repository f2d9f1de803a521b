// Package status reconstructs the cross-branch, cross-platform
// pass/fail view of every repository's published results, reading the
// pages branch through the hosting API without a checkout.
package status

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/testwell-ci/testpages/internal/gitx"
	"github.com/testwell-ci/testpages/internal/resultset"
)

// DefaultConcurrency bounds the per-repository fan-out.
const DefaultConcurrency = 8

// RemoteReader is the checkout-free view of a published store. It is
// satisfied by pagesapi.Reader and stubbed in tests.
type RemoteReader interface {
	ListPlatformDirs(ctx context.Context, owner, repo, branch string) ([]string, error)
	FetchResults(ctx context.Context, owner, repo, branch, platformID string) (*resultset.Document, error)
}

// RepoRef identifies one repository to check: its hosting slug plus
// the local clone used for freshness comparison.
type RepoRef struct {
	Name  string
	Owner string
	Repo  string
	Dir   string
}

// PlatformStatus is the decoded state of one published platform.
type PlatformStatus struct {
	Verdict    resultset.Verdict
	CommitHash string
	Timestamp  string
}

// BranchStatus maps platform id to its published state.
type BranchStatus map[string]PlatformStatus

// RepoStatus aggregates one repository's published state with its
// local provenance.
type RepoStatus struct {
	Ref         RepoRef
	LocalHead   string
	LocalBranch string
	// Branches maps tracked branch name to its platform results.
	// Branches with nothing published are absent.
	Branches map[string]BranchStatus
}

// DiscoverRepos scans reposDir for local clones with a parsable GitHub
// origin. Entries without one are skipped.
func DiscoverRepos(ctx context.Context, reposDir string) []RepoRef {
	entries, err := os.ReadDir(reposDir)
	if err != nil {
		log.Warnf("cannot read repos directory %s: %v", reposDir, err)
		return nil
	}

	var refs []RepoRef
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(reposDir, entry.Name())
		info, err := os.Stat(dir) // follows symlinked clones
		if err != nil || !info.IsDir() {
			continue
		}
		repo := gitx.NewRepo(dir)
		remoteURL, err := repo.RemoteURL(ctx, "origin")
		if err != nil {
			continue
		}
		or, err := gitx.ParseOwnerRepo(remoteURL)
		if err != nil {
			continue
		}
		refs = append(refs, RepoRef{Name: entry.Name(), Owner: or.Owner, Repo: or.Repo, Dir: dir})
	}
	sort.Slice(refs, func(i, j int) bool {
		return strings.ToLower(refs[i].Name) < strings.ToLower(refs[j].Name)
	})
	return refs
}

// Collect fetches published status for every repository with bounded
// concurrency. Failures are isolated per platform and per repository:
// a repo that cannot be read still appears, with no branch data, and
// the batch itself never fails.
func Collect(ctx context.Context, reader RemoteReader, refs []RepoRef, branches []string, concurrency int) []*RepoStatus {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*RepoStatus, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			repo := gitx.NewRepo(ref.Dir)
			results[i] = &RepoStatus{
				Ref:         ref,
				LocalHead:   repo.Head(ctx),
				LocalBranch: repo.CurrentBranch(ctx),
				Branches:    collectRepo(ctx, reader, ref, branches),
			}
			return nil
		})
	}
	// Units never return errors; Wait only synchronizes.
	_ = g.Wait()
	return results
}

// collectRepo reads every tracked branch of one repository. Remote
// read failures degrade to omitted platforms or branches.
func collectRepo(ctx context.Context, reader RemoteReader, ref RepoRef, branches []string) map[string]BranchStatus {
	out := map[string]BranchStatus{}
	for _, branch := range branches {
		platforms, err := reader.ListPlatformDirs(ctx, ref.Owner, ref.Repo, branch)
		if err != nil {
			log.Debugf("listing %s/%s %s: %v", ref.Owner, ref.Repo, branch, err)
			continue
		}
		bs := BranchStatus{}
		for _, pid := range platforms {
			doc, err := reader.FetchResults(ctx, ref.Owner, ref.Repo, branch, pid)
			if err != nil {
				log.Debugf("fetching %s/%s %s/%s: %v", ref.Owner, ref.Repo, branch, pid, err)
				continue
			}
			bs[pid] = PlatformStatus{
				Verdict:    doc.Verdict(),
				CommitHash: doc.CommitHash,
				Timestamp:  doc.Timestamp,
			}
		}
		if len(bs) > 0 {
			out[branch] = bs
		}
	}
	return out
}
