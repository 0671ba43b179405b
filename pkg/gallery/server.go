package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pixivcrawler/internal/metrics"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/manifest"
	"pixivcrawler/pkg/storage"
)

// OrientationAny draws from every orientation folder
const OrientationAny = "any"

// Options configures the gallery
type Options struct {
	// ImageRoot holds {tag}/{orientation}/manifest.json folders
	ImageRoot string
	// Tag selects the tag folder; empty picks the first one by name
	Tag       string
	CacheSize int
	CacheTTL  time.Duration
}

// OptionsFromConfig maps the serve config section
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ImageRoot: cfg.Serve.ImageRoot,
		Tag:       cfg.Serve.Tag,
		CacheSize: cfg.Serve.CacheSize,
		CacheTTL:  cfg.Serve.CacheTTL,
	}
}

// Server serves random images from processed manifests
type Server struct {
	opts   Options
	cache  *manifestCache
	intn   func(n int) int
	logger logger.Logger
}

// Index is the body of GET /
type Index struct {
	Tag    string         `json:"tag"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type entry struct {
	orientation storage.Orientation
	name        string
}

// httpError is a failure with the status it should be reported with
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

// New creates a gallery server
func New(opts Options, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Server{
		opts:   opts,
		cache:  newManifestCache(opts.CacheSize, opts.CacheTTL),
		intn:   rand.IntN,
		logger: log,
	}
}

// Handler returns the gallery routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api", s.handleRandom)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.WithError(err).Warn("unable to write healthcheck")
		}
	})
	return mux
}

// ListenAndServe serves on address:port until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, address string, port int) error {
	server := &http.Server{
		Addr:              net.JoinHostPort(address, strconv.Itoa(port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("gallery listening", map[string]interface{}{
			"addr":       server.Addr,
			"image_root": s.opts.ImageRoot,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down gallery")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gallery shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}

// resolveTag returns the configured tag or the first tag folder by name
func (s *Server) resolveTag() (string, error) {
	if s.opts.Tag != "" {
		if info, err := os.Stat(filepath.Join(s.opts.ImageRoot, s.opts.Tag)); err != nil || !info.IsDir() {
			return "", &httpError{http.StatusInternalServerError, "image library not found or empty"}
		}
		return s.opts.Tag, nil
	}

	entries, err := os.ReadDir(s.opts.ImageRoot)
	if err != nil {
		return "", &httpError{http.StatusInternalServerError, "image library not found or empty"}
	}
	for _, e := range entries {
		if e.IsDir() {
			return e.Name(), nil
		}
	}
	return "", &httpError{http.StatusInternalServerError, "image library not found or empty"}
}

func (s *Server) manifestPath(tag string, o storage.Orientation) string {
	return manifest.Path(filepath.Join(s.opts.ImageRoot, tag, string(o)))
}

// entries loads the names listed for one orientation. A missing manifest is
// reported as os.ErrNotExist; an undecodable one counts as empty.
func (s *Server) entries(tag string, o storage.Orientation) ([]entry, error) {
	path := s.manifestPath(tag, o)
	names, err := s.cache.Get(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		s.logger.WithError(err).WarnWithFields("unreadable manifest", map[string]interface{}{"path": path})
		return nil, nil
	}
	out := make([]entry, 0, len(names))
	for _, n := range names {
		out = append(out, entry{orientation: o, name: n})
	}
	return out, nil
}

// pick selects a random image for orientation
func (s *Server) pick(orientation string) (string, entry, error) {
	tag, err := s.resolveTag()
	if err != nil {
		return "", entry{}, err
	}

	var pool []entry
	if orientation == OrientationAny {
		for _, o := range storage.Orientations() {
			list, _ := s.entries(tag, o)
			pool = append(pool, list...)
		}
		if len(pool) == 0 {
			return tag, entry{}, &httpError{http.StatusNotFound, "no images available in the library"}
		}
	} else {
		o := storage.Orientation(orientation)
		pool, err = s.entries(tag, o)
		if err != nil {
			return tag, entry{}, &httpError{http.StatusNotFound,
				fmt.Sprintf("orientation '%s' does not exist or has no manifest.json", o)}
		}
		if len(pool) == 0 {
			return tag, entry{}, &httpError{http.StatusNotFound,
				fmt.Sprintf("image list for orientation '%s' is empty", o)}
		}
	}
	return tag, pool[s.intn(len(pool))], nil
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	orientation := r.URL.Query().Get("orientation")
	if orientation == "" {
		orientation = OrientationAny
	}
	label := orientation

	status := http.StatusOK
	defer func() {
		metrics.GalleryRequestsTotal.WithLabelValues(label, strconv.Itoa(status)).Inc()
	}()

	if orientation != OrientationAny {
		if o, ok := storage.ParseOrientation(orientation); !ok || string(o) != orientation {
			label = "invalid"
			status = http.StatusBadRequest
			writeError(w, status, "invalid orientation parameter, available values: "+availableOrientations())
			return
		}
	}

	tag, picked, err := s.pick(orientation)
	if err != nil {
		status = statusOf(err)
		writeError(w, status, err.Error())
		return
	}

	path := filepath.Join(s.opts.ImageRoot, tag, string(picked.orientation), picked.name)
	if !safeName(picked.name) {
		status = http.StatusInternalServerError
		writeError(w, status, fmt.Sprintf("selected image '%s' does not exist or is not readable", picked.name))
		return
	}
	if err := s.serveFile(w, path); err != nil {
		s.logger.WithError(err).WarnWithFields("cannot serve image", map[string]interface{}{"path": path})
		status = http.StatusInternalServerError
		writeError(w, status, fmt.Sprintf("selected image '%s' does not exist or is not readable", picked.name))
		return
	}
}

// serveFile writes the file with its sniffed MIME type and no-cache headers.
// Nothing is written when the file cannot be opened.
func (s *Server) serveFile(w http.ResponseWriter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	head = head[:n]

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	h := w.Header()
	h.Set("Content-Type", http.DetectContentType(head))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		s.logger.WithError(err).DebugWithFields("client went away", map[string]interface{}{"path": path})
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	idx := Index{Counts: make(map[string]int, 3)}
	for _, o := range storage.Orientations() {
		idx.Counts[string(o)] = 0
	}

	if tag, err := s.resolveTag(); err == nil {
		idx.Tag = tag
		for _, o := range storage.Orientations() {
			list, _ := s.entries(tag, o)
			idx.Counts[string(o)] = len(list)
			idx.Total += len(list)
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(idx); err != nil {
		s.logger.WithError(err).Warn("failed to write index")
	}
}

func availableOrientations() string {
	names := make([]string, 0, 4)
	for _, o := range storage.Orientations() {
		names = append(names, string(o))
	}
	return strings.Join(append(names, OrientationAny), ", ")
}

// safeName rejects manifest entries that would leave their folder
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

func statusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
