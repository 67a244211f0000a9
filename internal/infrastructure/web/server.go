// Package web serves the read-only listing of recorded generations.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/bnrubin/discord-logbot/assets"
	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

const maxPageLinks = 10

// Searcher returns one listing page. search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, substring string, page int) (domain.SearchPage, error)
}

// Pinger reports store reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsRecorder is the subset of metrics the server writes to.
type MetricsRecorder interface {
	RecordHTTPRequest(route, method string, code int, duration time.Duration)
	RecordRateLimited()
	Handler() http.Handler
}

// Options configures a Server.
type Options struct {
	Search         Searcher
	Health         Pinger
	Metrics        MetricsRecorder
	Logger         ports.Logger
	ImageDir       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the listing HTTP server.
type Server struct {
	opts    Options
	router  *mux.Router
	tmpl    *template.Template
	limiter *limiterPool
}

// NewServer wires routes and parses the page template.
func NewServer(opts Options) (*Server, error) {
	if opts.Search == nil || opts.Logger == nil {
		return nil, errors.New("web.Server dependencies not satisfied")
	}

	tmpl, err := template.New("index").Funcs(templateFuncs()).Parse(assets.IndexTemplate)
	if err != nil {
		return nil, err
	}

	s := &Server{opts: opts, router: mux.NewRouter(), tmpl: tmpl}
	if opts.RateLimitRPS > 0 {
		s.limiter = newLimiterPool(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	if s.opts.Metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	r.Handle("/", s.rateLimited(http.HandlerFunc(s.handleIndex))).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	if s.opts.ImageDir != "" {
		images := http.StripPrefix("/images/", noListing(http.FileServer(http.Dir(s.opts.ImageDir))))
		r.PathPrefix("/images/").Handler(s.rateLimited(images)).Methods(http.MethodGet, http.MethodHead)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("web server listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), domain.DefaultShutdownTimeout)
	defer cancel()
	s.opts.Logger.Info("web server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// handleIndex serves GET|POST /. A submitted search resets the page to 1.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		if submitted := r.PostForm.Get("query"); submitted != "" {
			query = submitted
			page = 1
		}
	}

	result, err := s.opts.Search.Search(r.Context(), query, page)
	if err != nil {
		s.opts.Logger.Error("listing search failed", err, map[string]interface{}{
			"query": query,
			"page":  page,
		})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newListingResponse(result))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, pageView{SearchPage: result, PageNumbers: pageNumbers(result)}); err != nil {
		s.opts.Logger.Error("render listing", err, nil)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			if s.opts.Metrics != nil {
				s.opts.Metrics.RecordRateLimited()
			}
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.opts.Metrics.RecordHTTPRequest(route, r.Method, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// noListing hides directory indexes from the file server.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type pageView struct {
	domain.SearchPage
	PageNumbers []int
}

type listingResponse struct {
	Items      []domain.InteractionRecord `json:"items"`
	TotalCount int                        `json:"total_count"`
	TotalPages int                        `json:"total_pages"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	Query      string                     `json:"query"`
}

func newListingResponse(page domain.SearchPage) listingResponse {
	return listingResponse{
		Items:      page.Items,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages(),
		Page:       page.Page,
		PageSize:   page.PageSize,
		Query:      page.Query,
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pageNumbers returns up to maxPageLinks page numbers around the current page.
func pageNumbers(page domain.SearchPage) []int {
	total := page.TotalPages()
	if total <= 1 {
		return nil
	}
	start := page.Page - maxPageLinks/2
	if start < 1 {
		start = 1
	}
	end := start + maxPageLinks - 1
	if end > total {
		end = total
		if start = end - maxPageLinks + 1; start < 1 {
			start = 1
		}
	}
	numbers := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		numbers = append(numbers, i)
	}
	return numbers
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"thumbnail": domain.ThumbnailName,
		"ago":       humanize.Time,
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
		"pageURL": func(page int, query string) string {
			v := url.Values{}
			v.Set("page", strconv.Itoa(page))
			if query != "" {
				v.Set("query", query)
			}
			return "/?" + v.Encode()
		},
	}
}
