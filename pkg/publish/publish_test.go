package publish

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// fixture is a source repository with a bare origin and a logs dir.
type fixture struct {
	repoDir   string
	remoteDir string
	logsDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repoDir:   t.TempDir(),
		remoteDir: t.TempDir(),
		logsDir:   t.TempDir(),
	}
	git(t, f.remoteDir, "init", "--bare")
	git(t, f.repoDir, "init")
	git(t, f.repoDir, "config", "user.email", "ci@example.com")
	git(t, f.repoDir, "config", "user.name", "ci")
	require.NoError(t, os.WriteFile(filepath.Join(f.repoDir, "src.txt"), []byte("code\n"), 0644))
	git(t, f.repoDir, "add", ".")
	git(t, f.repoDir, "commit", "-m", "initial")
	git(t, f.repoDir, "remote", "add", "origin", f.remoteDir)
	git(t, f.repoDir, "push", "-u", "origin", "HEAD")
	return f
}

// writeRun creates {repo}-{ts}/{branch}/{platform}/results.json. The
// run directory's mtime is pushed forward so the locator ordering is
// deterministic even on coarse filesystem clocks.
func (f *fixture) writeRun(t *testing.T, ts string, branch, platform, payload string) {
	t.Helper()
	runDir := filepath.Join(f.logsDir, "widgets-"+ts)
	dir := filepath.Join(runDir, branch, platform)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.json"), []byte(payload), 0644))

	hour, min := ts[:2], ts[2:]
	when, err := time.Parse("2006-01-02 15:04", "2030-01-01 "+hour+":"+min)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(runDir, when, when))
}

func (f *fixture) publisher(force, push bool) *Publisher {
	return NewPublisher(&Options{
		RepoName:    "widgets",
		RepoDir:     f.repoDir,
		LogsDir:     f.logsDir,
		PagesBranch: "gh-pages",
		Force:       force,
		Push:        push,
	})
}

// showRemote reads a file from the bare remote's gh-pages branch.
func (f *fixture) showRemote(t *testing.T, path string) (string, error) {
	cmd := exec.Command("git", "--git-dir", f.remoteDir, "show", "gh-pages:"+path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Errorf("%s: %s", err, out)
	}
	return string(out), nil
}

func TestPublishOrphanBootstrap(t *testing.T) {
	requireGit(t)
	f := newFixture(t)
	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)

	outcome, err := f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)

	// The published subtree and the sentinel are there.
	content, err := f.showRemote(t, "dev/linux-gpu/results.json")
	require.NoError(t, err)
	assert.Contains(t, content, `"commit_hash": "aaa"`)
	_, err = f.showRemote(t, ".nojekyll")
	require.NoError(t, err)

	// Nothing inherited from the default branch.
	_, err = f.showRemote(t, "src.txt")
	assert.Error(t, err)

	// The caller's checkout never moved.
	assert.NotEqual(t, "gh-pages", git(t, f.repoDir, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Empty(t, git(t, f.repoDir, "status", "--porcelain"))
}

func TestPublishPreservesOtherPlatforms(t *testing.T) {
	requireGit(t)
	f := newFixture(t)

	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)
	_, err := f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)

	// A later run covering a different platform must not clobber the
	// first one.
	f.writeRun(t, "1000", "dev", "windows-cpu", `{"success": false, "commit_hash": "bbb"}`)
	outcome, err := f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)

	linux, err := f.showRemote(t, "dev/linux-gpu/results.json")
	require.NoError(t, err)
	assert.Contains(t, linux, `"commit_hash": "aaa"`)

	windows, err := f.showRemote(t, "dev/windows-cpu/results.json")
	require.NoError(t, err)
	assert.Contains(t, windows, `"commit_hash": "bbb"`)
}

func TestPublishReplacesPlatformSubtreeWhole(t *testing.T) {
	requireGit(t)
	f := newFixture(t)

	run1 := filepath.Join(f.logsDir, "widgets-0900", "dev", "linux-gpu")
	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)
	require.NoError(t, os.WriteFile(filepath.Join(run1, "stale.log"), []byte("old"), 0644))
	_, err := f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)

	// New run for the same platform without the extra file.
	f.writeRun(t, "1000", "dev", "linux-gpu", `{"success": true, "commit_hash": "ccc"}`)
	_, err = f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)

	content, err := f.showRemote(t, "dev/linux-gpu/results.json")
	require.NoError(t, err)
	assert.Contains(t, content, `"commit_hash": "ccc"`)

	// Leftovers from the replaced run are gone.
	_, err = f.showRemote(t, "dev/linux-gpu/stale.log")
	assert.Error(t, err)
}

func TestPublishIdempotent(t *testing.T) {
	requireGit(t)
	f := newFixture(t)
	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)

	outcome, err := f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)

	firstHead := git(t, f.remoteDir, "rev-parse", "gh-pages")

	outcome, err = f.publisher(false, true).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoChanges, outcome)
	assert.Equal(t, firstHead, git(t, f.remoteDir, "rev-parse", "gh-pages"))
}

func TestPublishDirtyGuard(t *testing.T) {
	requireGit(t)
	f := newFixture(t)
	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)

	require.NoError(t, os.WriteFile(filepath.Join(f.repoDir, "src.txt"), []byte("edited\n"), 0644))

	_, err := f.publisher(false, true).Publish(context.Background())
	var dirty *DirtyTreeError
	require.ErrorAs(t, err, &dirty)
	require.Len(t, dirty.Paths, 1)
	assert.Contains(t, dirty.Paths[0], "src.txt")

	// The guard fired before anything touched the remote.
	_, err = f.showRemote(t, ".nojekyll")
	assert.Error(t, err)

	// Force proceeds.
	outcome, err := f.publisher(true, true).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
}

func TestPublishNoResults(t *testing.T) {
	requireGit(t)
	f := newFixture(t)

	_, err := f.publisher(false, true).Publish(context.Background())
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestPublishNoPlatformData(t *testing.T) {
	requireGit(t)
	f := newFixture(t)
	// A run directory with a branch folder but no recognized platform.
	require.NoError(t, os.MkdirAll(filepath.Join(f.logsDir, "widgets-0900", "dev"), 0755))

	_, err := f.publisher(false, true).Publish(context.Background())
	assert.ErrorIs(t, err, ErrNoPlatformData)
}

func TestPublishWithoutPushLeavesLocalCommit(t *testing.T) {
	requireGit(t)
	f := newFixture(t)
	f.writeRun(t, "0900", "dev", "linux-gpu", `{"success": true, "commit_hash": "aaa"}`)

	outcome, err := f.publisher(false, false).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)

	// Local branch exists, remote untouched.
	git(t, f.repoDir, "rev-parse", "gh-pages")
	_, err = f.showRemote(t, "dev/linux-gpu/results.json")
	assert.Error(t, err)
}
