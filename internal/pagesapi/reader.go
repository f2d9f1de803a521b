// Package pagesapi reads published results straight from the hosting
// API, so status checks never need a checkout of the pages branch.
package pagesapi

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/google/go-github/v29/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/testwell-ci/testpages/internal/resultset"
)

// Reader lists and fetches files on a repository's pages branch
// through the contents API.
type Reader struct {
	client      *github.Client
	pagesBranch string
}

// NewReader builds a Reader. token may be empty for public stores,
// at the cost of the API's anonymous rate limit.
func NewReader(ctx context.Context, token, pagesBranch string) *Reader {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	return &Reader{
		client:      github.NewClient(hc),
		pagesBranch: pagesBranch,
	}
}

// NewReaderWithClient wires a preconfigured API client, used by tests
// to point at a stub server.
func NewReaderWithClient(client *github.Client, pagesBranch string) *Reader {
	return &Reader{client: client, pagesBranch: pagesBranch}
}

// ListPlatformDirs returns the platform directories published under
// one source branch. Loose files such as index.html are skipped.
func (r *Reader) ListPlatformDirs(ctx context.Context, owner, repo, branch string) ([]string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: r.pagesBranch}
	_, dir, _, err := r.client.Repositories.GetContents(ctx, owner, repo, branch, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s on %s/%s", branch, owner, repo)
	}

	var platforms []string
	for _, entry := range dir {
		if entry.GetType() != "dir" {
			continue
		}
		if strings.HasSuffix(entry.GetName(), ".html") {
			continue
		}
		platforms = append(platforms, entry.GetName())
	}
	return platforms, nil
}

// FetchResults downloads and decodes {branch}/{platform}/results.json
// from the pages branch.
func (r *Reader) FetchResults(ctx context.Context, owner, repo, branch, platformID string) (*resultset.Document, error) {
	opts := &github.RepositoryContentGetOptions{Ref: r.pagesBranch}
	filePath := path.Join(branch, platformID, resultset.ResultsFileName)
	file, _, _, err := r.client.Repositories.GetContents(ctx, owner, repo, filePath, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s from %s/%s", filePath, owner, repo)
	}
	if file == nil {
		return nil, errors.Errorf("%s is not a file on %s/%s", filePath, owner, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filePath)
	}
	return resultset.DecodeDocument([]byte(content))
}
