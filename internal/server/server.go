// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	derrors "docsite/internal/errors"
	"docsite/internal/logfields"
	"docsite/internal/metrics"
	"docsite/internal/scan"
	"docsite/internal/site"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	MetricsPath = "/_docsite/metrics"
	HealthPath  = "/_docsite/healthz"

	shutdownTimeout = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	// OutputDir receives the whole-tree builds and backs the static fallback.
	OutputDir string
	// Clean empties OutputDir before the initial build.
	Clean bool
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
}

// Server exposes a documentation tree over HTTP, rendering pages on request.
type Server struct {
	assembler *site.Assembler
	opts      Options
	logger    *zap.Logger
	recorder  metrics.Recorder

	mu       sync.Mutex
	manifest []scan.SourceFile
	stale    bool
}

func New(a *site.Assembler, opts Options, logger *zap.Logger, recorder metrics.Recorder) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Server{
		assembler: a,
		opts:      opts,
		logger:    logger,
		recorder:  recorder,
		stale:     true,
	}
}

// Run builds the site once, then serves it on addr and rebuilds on source
// changes until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if _, err := s.rebuild(site.BuildOptions{CleanDestination: s.opts.Clean}); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := newWatcher(s.assembler.SourceRoot(), s.opts.OutputDir, s.logger)
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()
	go watcher.run(ctx, s.invalidate, func() {
		if _, err := s.rebuild(site.BuildOptions{}); err != nil {
			s.logger.Error("Error rebuilding site", logfields.Error(err))
		}
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info("Serving site", logfields.Addr(addr))

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the HTTP routes of the live site.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, MetricsPath, s.opts.MetricsHandler)
	}
	r.Get("/*", s.serveDocument)
	r.NotFound(s.notFound)
	return r
}

func (s *Server) rebuild(opts site.BuildOptions) (site.Report, error) {
	report, err := s.assembler.Build(s.opts.OutputDir, opts)
	s.invalidate()
	if skipErr := report.Err(); skipErr != nil {
		s.logger.Warn("Rebuild skipped source files",
			logfields.Skipped(len(report.Skipped)),
			logfields.Error(skipErr))
	}
	return report, err
}

func (s *Server) invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// currentManifest rescans the source tree when a change has been seen since
// the last scan. Every request renders against one complete manifest.
func (s *Server) currentManifest() ([]scan.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stale {
		return s.manifest, nil
	}
	manifest, err := s.assembler.Manifest()
	if err != nil {
		return nil, err
	}
	s.manifest, s.stale = manifest, false
	return manifest, nil
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request) {
	manifest, err := s.currentManifest()
	if err != nil {
		s.serveError(w, r, err)
		return
	}
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	if strings.EqualFold(path.Ext(rel), s.assembler.Extension()) {
		if f, ok := lookup(manifest, rel); ok {
			s.serveSource(w, r, f)
			return
		}
	}
	if f, ok := s.pageFor(manifest, rel); ok {
		page, err := s.assembler.Page(manifest, f)
		if err != nil {
			s.serveError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
		return
	}
	if s.serveStatic(w, r, rel) {
		return
	}
	s.notFound(w, r)
}

func (s *Server) serveSource(w http.ResponseWriter, r *http.Request, f scan.SourceFile) {
	data, err := s.assembler.ReadSource(f)
	if err != nil {
		s.serveError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

// pageFor maps a request path to the document rendered there: "" is the
// root index, "<stem>" and "<stem>.html" name a document, and a directory
// path names its index document. Stems are compared without the source
// extension, whatever its case.
func (s *Server) pageFor(manifest []scan.SourceFile, rel string) (scan.SourceFile, bool) {
	stem := strings.TrimSuffix(rel, ".html")
	if stem == "" {
		return lookupStem(manifest, "index")
	}
	if f, ok := lookupStem(manifest, stem); ok {
		return f, true
	}
	return lookupStem(manifest, stem+"/index")
}

func lookup(manifest []scan.SourceFile, rel string) (scan.SourceFile, bool) {
	for _, f := range manifest {
		if f.RelativePath == rel {
			return f, true
		}
	}
	return scan.SourceFile{}, false
}

func lookupStem(manifest []scan.SourceFile, stem string) (scan.SourceFile, bool) {
	for _, f := range manifest {
		if f.Stem() == stem {
			return f, true
		}
	}
	return scan.SourceFile{}, false
}

// serveStatic serves rel, or rel/index.html, from the output tree.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request, rel string) bool {
	if s.opts.OutputDir == "" {
		return false
	}
	base := filepath.Join(s.opts.OutputDir, filepath.FromSlash(rel))
	for _, candidate := range []string{base, filepath.Join(base, "index.html")} {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		http.ServeFile(w, r, candidate)
		return true
	}
	return false
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{ .Status }} {{ .StatusText }}</title></head>
<body>
  <h1>{{ .Status }} {{ .StatusText }}</h1>
  <p>{{ .Message }}</p>
  <p><a href="/">Back to the documentation</a></p>
</body>
</html>
`))

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeErrorPage(w, http.StatusNotFound, fmt.Sprintf("No document at %s.", r.URL.Path))
}

func (s *Server) serveError(w http.ResponseWriter, r *http.Request, err error) {
	status := derrors.HTTPStatus(err)
	s.logger.Warn("Request failed",
		logfields.Path(r.URL.Path),
		logfields.Status(status),
		logfields.Error(err))
	message := "The page could not be generated."
	if status == http.StatusNotFound {
		message = fmt.Sprintf("No document at %s.", r.URL.Path)
	}
	writeErrorPage(w, status, message)
}

func writeErrorPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorPage.Execute(w, struct {
		Status     int
		StatusText string
		Message    string
	}{status, http.StatusText(status), message})
}

// logRequests logs every request and counts it by route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.recorder.IncRequest(route, status)
		s.logger.Debug("Request served",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(status),
			logfields.Duration(time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
