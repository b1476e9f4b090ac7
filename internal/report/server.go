package report

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bianoble/shotpull/internal/transport"
)

// Handler serves a generated report directory. When device is non-nil,
// GET /device/* streams the named file off the device as well, so tiles
// and dumps can be inspected without a fresh pull.
func Handler(dir string, device transport.Transport, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Debug("request", "method", req.Method, "path", req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	if device != nil {
		r.Get("/device/*", func(w http.ResponseWriter, req *http.Request) {
			remote := path.Clean("/" + chi.URLParam(req, "*"))
			if !device.Exists(req.Context(), remote) {
				http.NotFound(w, req)
				return
			}

			tmp, err := os.MkdirTemp("", "shotpull-serve-*")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			defer os.RemoveAll(tmp)

			local := filepath.Join(tmp, path.Base(remote))
			if err := device.Pull(req.Context(), remote, local); err != nil {
				logger.Error("device pull failed", "path", remote, "error", err)
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			http.ServeFile(w, req, local)
		})
	}

	r.Handle("/*", http.FileServer(http.Dir(dir)))
	return r
}
