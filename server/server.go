package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"sdgsearch/search"
	"sdgsearch/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Server struct {
	index *search.Index
	log   *zap.Logger
}

func New(index *search.Index, log *zap.Logger) *Server {
	return &Server{
		index: index,
		log:   log,
	}
}

// Handler instruments the whole API surface: otelhttp opens a server span per
// inbound request, and the inner middleware annotates it once the handler has
// run.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/search/ws", s.handleSearchSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return otelhttp.NewHandler(s.withRequestAttributes(mux), "search-backend")
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

type searchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []resultDTO `json:"results"`
}

type resultDTO struct {
	Score       float64  `json:"score"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}

	topN, _ := strconv.Atoi(r.URL.Query().Get("n"))

	results, err := s.index.Query(r.Context(), query, topN)
	if err != nil {
		s.log.Error("search failed", zap.String("query", query), zap.Error(err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(query, results))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.index.DocumentCount(),
	})
}

func toResponse(query string, results []search.Result) searchResponse {
	resp := searchResponse{
		Query:   query,
		Count:   len(results),
		Results: make([]resultDTO, len(results)),
	}
	for i, result := range results {
		resp.Results[i] = resultDTO{
			Score:       result.Score,
			Title:       result.Document.Title,
			Description: result.Document.Description,
			Tags:        result.Document.Tags,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// withRequestAttributes adds the response annotations after the handler has
// run. Failures here never fail the request.
func (s *Server) withRequestAttributes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		counter := &countingWriter{ResponseWriter: w}

		next.ServeHTTP(counter, r)

		ctx := r.Context()
		tracing.SetAttribute(ctx, "api.endpoint", r.URL.Path)
		tracing.SetAttribute(ctx, "http.duration_seconds", time.Since(start).Seconds())
		tracing.SetAttribute(ctx, "http.response_size", counter.written)
	})
}

type countingWriter struct {
	http.ResponseWriter
	written int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.ResponseWriter.Write(b)
	c.written += int64(n)
	return n, err
}

// Hijack keeps the websocket upgrade working through the middleware.
func (c *countingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := c.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hijacker.Hijack()
}
