package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatEdges: "application/json",
	pipeline.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:   "image/svg+xml",
	pipeline.FormatPDF:   "application/pdf",
	pipeline.FormatHTML:  "text/html; charset=utf-8",
	pipeline.FormatText:  "text/plain; charset=utf-8",
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	ctype, ok := contentTypes[format]
	if !ok {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "unknown format %q", format))
		return
	}
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	res := &pipeline.Result{
		Result:   run.Result(),
		App:      run.App,
		Manifest: run.Manifest,
		Summary:  run.Summary,
	}
	data, err := s.runner.Render(r.Context(), res, format)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheck resolves an uploaded manifest and stores the run. The body is
// the manifest itself; ?filename= names it (default Gemfile), ?app= and
// ?groups= override the configured root name and groups.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	if filename == "" {
		filename = "Gemfile"
	}
	if err := errs.ValidateManifestFilename(filename); err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read manifest"))
		return
	}
	if len(body) == 0 {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "empty manifest"))
		return
	}

	dir, err := os.MkdirTemp("", "debgems-upload-")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		writeError(w, err)
		return
	}

	app := q.Get("app")
	if app == "" {
		app = strings.TrimSuffix(filename, ".gemspec")
		if app == "Gemfile" || app == "gems.rb" {
			app = "app"
		}
	}
	var groups []string
	if g := q.Get("groups"); g != "" {
		groups = strings.Split(g, ",")
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Check(ctx, pipeline.Options{
		Manifest: path,
		App:      app,
		Groups:   groups,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	run := store.NewRun(res.App, filename, res.Result)
	if err := s.store.Save(r.Context(), run); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("stored run", "id", run.ID, "app", run.App, "gems", run.Summary.Total)
	w.Header().Set("Location", "/runs/"+run.ID)
	writeJSON(w, http.StatusCreated, run.Header())
}
