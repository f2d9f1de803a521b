package pagesapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v29/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwell-ci/testpages/internal/resultset"
)

// newStubReader wires a Reader at a stub contents API.
func newStubReader(t *testing.T, handler http.Handler) *Reader {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewReaderWithClient(client, "gh-pages")
}

func TestListPlatformDirs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/contents/dev", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gh-pages", r.URL.Query().Get("ref"))
		fmt.Fprint(w, `[
			{"name": "linux-gpu", "type": "dir"},
			{"name": "windows-cpu", "type": "dir"},
			{"name": "index.html", "type": "file"},
			{"name": "charts.html", "type": "file"}
		]`)
	})

	reader := newStubReader(t, mux)
	dirs, err := reader.ListPlatformDirs(context.Background(), "acme", "widgets", "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"linux-gpu", "windows-cpu"}, dirs)
}

func TestListPlatformDirsMissingBranch(t *testing.T) {
	reader := newStubReader(t, http.NotFoundHandler())
	_, err := reader.ListPlatformDirs(context.Background(), "acme", "widgets", "dev")
	assert.Error(t, err)
}

func TestFetchResults(t *testing.T) {
	payload := `{"summary": {"total": 5, "failed": 0}, "commit_hash": "abc123", "timestamp": "2024-05-01T10:00:00"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/contents/dev/linux-gpu/results.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": "results.json", "type": "file", "encoding": "base64", "content": %q}`, encoded)
	})

	reader := newStubReader(t, mux)
	doc, err := reader.FetchResults(context.Background(), "acme", "widgets", "dev", "linux-gpu")
	require.NoError(t, err)
	assert.Equal(t, resultset.VerdictPassed, doc.Verdict())
	assert.Equal(t, "abc123", doc.CommitHash)
}

func TestFetchResultsMissingFile(t *testing.T) {
	reader := newStubReader(t, http.NotFoundHandler())
	_, err := reader.FetchResults(context.Background(), "acme", "widgets", "dev", "linux-gpu")
	assert.Error(t, err)
}
