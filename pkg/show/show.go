// Package show serves a local result set over HTTP as an exact
// preview of the published pages layout.
package show

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/testwell-ci/testpages/internal/render"
	"github.com/testwell-ci/testpages/internal/resultset"
)

// RenderAll regenerates every report page inside the result set, the
// same way publish does into the pages worktree. Render errors are
// logged and skipped so a single malformed results.json does not block
// the preview.
func RenderAll(rs *resultset.ResultSet) error {
	r := render.New()

	branches, err := rs.Branches()
	if err != nil {
		return err
	}
	for _, branch := range branches {
		log.Infof("Branch: %s", branch.Name)
		for _, pid := range branch.Platforms() {
			if err := r.Platform(branch.PlatformDir(pid), rs.RepoID, pid); err != nil {
				log.Warnf("rendering %s/%s: %v", branch.Name, pid, err)
			}
		}
		if err := r.BranchIndex(branch.Dir, rs.RepoID); err != nil {
			log.Warnf("rendering %s index: %v", branch.Name, err)
		}
	}
	if err := r.RootIndex(rs.Dir, rs.RepoID); err != nil {
		log.Warnf("rendering root index: %v", err)
	}
	return nil
}

// Serve blocks serving the result set directory until ctx is canceled.
func Serve(ctx context.Context, rs *resultset.ResultSet, port int) error {
	mux := chi.NewRouter()
	mux.Use(middleware.NoCache)
	mux.Handle("/*", http.FileServer(http.Dir(rs.Dir)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Serving at http://localhost:%d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
