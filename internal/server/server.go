package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/rdf"
)

// DocumentStore accepts uploaded vocabulary documents
type DocumentStore interface {
	Put(prefix string, data []byte) (bool, error)
}

// Server represents the HTTP CURIE server
type Server struct {
	engine   *curie.Engine
	addr     string
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	store    DocumentStore
	maxBody  int64
}

// DefaultMaxUploadBytes is the upload limit when none is configured
const DefaultMaxUploadBytes = 10 << 20

// Option configures a Server
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer exposes the metrics of gatherer at /metrics
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDocumentStore enables uploads at /data
func WithDocumentStore(store DocumentStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMaxUploadBytes caps the size of documents accepted at /data
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewServer creates a new HTTP server for engine
func NewServer(engine *curie.Engine, addr string, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		addr:    addr,
		logger:  slog.Default(),
		maxBody: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/compact", s.handleCompact)
	mux.HandleFunc("/expand", s.handleExpand)
	mux.HandleFunc("/resolve", s.handleResolve)
	mux.HandleFunc("/load", s.handleLoad)
	mux.HandleFunc("/prefixes", s.handlePrefixes)
	mux.HandleFunc("/data", s.handleDataUpload)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	mux.HandleFunc("/", s.handleRoot)
	return s.withRequestID(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting CURIE endpoint", slog.String("addr", s.addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		s.logger.Debug("Request served",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("took", time.Since(start)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// handleRoot lists the endpoints
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	endpoints := []string{"/compact", "/expand", "/resolve", "/load", "/prefixes", "/data"}
	if s.gatherer != nil {
		endpoints = append(endpoints, "/metrics")
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "curie",
		"prefixes":  s.engine.Registry().Len(),
		"cached":    s.engine.Cache().Len(),
		"endpoints": endpoints,
	})
}

// allowGet sets the CORS headers and rejects anything but GET
func (s *Server) allowGet(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	switch r.Method {
	case http.MethodGet:
		return true
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		s.writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed. Use GET")
	}
	return false
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}

	iri := r.URL.Query().Get("iri")
	if iri == "" {
		s.writeError(w, r, http.StatusBadRequest, "Missing 'iri' parameter")
		return
	}

	s.writeJSON(w, http.StatusOK, CompactResponse{IRI: iri, Name: s.engine.Compact(iri)})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}

	res, ok := s.resolve(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, ExpandResponse{Name: res.Name, IRI: res.IRI})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}

	res, ok := s.resolve(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// resolve runs the name and type parameters of r through the engine and
// writes the error response itself when it fails
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (curie.Resolution, bool) {
	query := r.URL.Query()
	name := query.Get("name")
	if name == "" {
		s.writeError(w, r, http.StatusBadRequest, "Missing 'name' parameter")
		return curie.Resolution{}, false
	}

	res, err := s.engine.Resolve(r.Context(), name, rdf.NamedNodes(query["type"]...)...)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, curie.ErrUnknownPrefix):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, r, http.StatusServiceUnavailable, fmt.Sprintf("Resolution aborted: %v", err))
	}
	return curie.Resolution{}, false
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}

	query := r.URL.Query()
	opts := curie.LoadOptions{Only: splitList(query["only"])}
	if v := query.Get("merge"); v != "" {
		merge, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "Invalid 'merge' parameter")
			return
		}
		opts.Merge = merge
	}

	startTime := time.Now()
	result, err := s.engine.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, fmt.Sprintf("Load aborted: %v", err))
		return
	}

	if opts.Merge && s.negotiateFormat(r.Header.Get("Accept")) == "nquads" {
		w.Header().Set("Content-Type", "application/n-quads; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := result.Merged.WriteNQuads(w); err != nil {
			s.logger.Warn("Failed to write N-Quads", slog.String("request_id", requestID(r)), slog.String("error", err.Error()))
		}
		return
	}

	s.writeJSON(w, http.StatusOK, FormatLoadResult(result, time.Since(startTime)))
}

func (s *Server) handlePrefixes(w http.ResponseWriter, r *http.Request) {
	if !s.allowGet(w, r) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Registry().Entries())
}

// handleDataUpload stores a vocabulary document for the prefix named in the query
func (s *Server) handleDataUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed. Use POST")
		return
	}
	if s.store == nil {
		s.writeError(w, r, http.StatusNotImplemented, "No document store configured")
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if !s.engine.Registry().Has(prefix) {
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown prefix %q", prefix))
		return
	}

	parser, err := rdf.NewParser(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type. Supported types: %v", rdf.GetSupportedContentTypes()))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}
	quads, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Parse error: %v", err))
		return
	}

	changed, err := s.store.Put(prefix, data)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("Store error: %v", err))
		return
	}

	s.logger.Info("Vocabulary document stored",
		slog.String("request_id", requestID(r)),
		slog.String("prefix", prefix),
		slog.Int("quads", len(quads)),
		slog.Bool("changed", changed))
	s.writeJSON(w, http.StatusOK, UploadResponse{Prefix: prefix, Quads: len(quads), Changed: changed})
}

// negotiateFormat determines the response format based on Accept header
func (s *Server) negotiateFormat(acceptHeader string) string {
	accept := strings.ToLower(acceptHeader)
	if strings.Contains(accept, "application/n-quads") || strings.Contains(accept, "text/plain") {
		return "nquads"
	}
	return "json"
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v) // #nosec G104 - client went away
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.logger.Warn("Request failed",
		slog.String("request_id", requestID(r)),
		slog.Int("status", statusCode),
		slog.String("error", message))

	s.writeJSON(w, statusCode, ErrorResponse{Error: ErrorBody{Code: statusCode, Message: message}})
}

// splitList flattens repeated and comma separated query values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
