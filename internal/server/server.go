package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/vracanantes/vracmap"
)

// DefaultClusterPrecision is the geohash length used by /api/clusters.
const DefaultClusterPrecision = 5

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RateLimit      float64 // requests per second, 0 disables
	RateBurst      int
	Logger         *log.Logger
}

// Server exposes one processed dataset to the map frontend.
type Server struct {
	dataset *vracmap.Dataset
	report  vracmap.Report
	logger  *log.Logger
	router  chi.Router
}

// New processes the dataset once and builds the router.
func New(d *vracmap.Dataset, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		dataset: d,
		report:  d.Process(),
		logger:  opts.Logger,
	}
	s.logger.Printf("info: snapshot %s: %d shops displayed, %d skipped", d.ID, len(s.report.Entries), s.report.SkippedCount())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), burst)))
	}
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.snapshotHeader)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/shops", s.handleShops)
		r.Get("/shops.geojson", s.handleShopsGeoJSON)
		r.Get("/clusters", s.handleClusters)
		r.Get("/viewport", s.handleViewport)
		r.Get("/stats", s.handleStats)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) snapshotHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Snapshot-ID", s.dataset.ID)
		next.ServeHTTP(w, r)
	})
}

// entries returns the entries inside the requested bounds; without bounds
// parameters every entry is returned.
func (s *Server) entries(r *http.Request) []vracmap.DisplayEntry {
	req := vracmap.BoundsRequestFromQuery(r.URL.Query())
	if !req.IsSet() {
		return s.report.Entries
	}
	return vracmap.FilterEntries(s.report.Entries, req.Resolve(s.logger))
}

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := vracmap.WriteJSON(w, s.entries(r)); err != nil {
		s.logger.Printf("[server] shops error: %v", err)
	}
}

func (s *Server) handleShopsGeoJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := vracmap.WriteGeoJSON(w, s.entries(r)); err != nil {
		s.logger.Printf("[server] geojson error: %v", err)
	}
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	precision := DefaultClusterPrecision
	if v := r.URL.Query().Get("precision"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "precision must be an integer", http.StatusBadRequest)
			return
		}
		precision = p
	}
	clusters, err := vracmap.Clusters(s.entries(r), precision)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, clusters)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	b := vracmap.BoundsRequestFromQuery(r.URL.Query()).Resolve(s.logger)
	s.writeJSON(w, vracmap.NewViewport(b))
}

type statsResponse struct {
	Snapshot  string                     `json:"snapshot"`
	LoadedAt  time.Time                  `json:"loadedAt"`
	Total     int                        `json:"total"`
	Displayed int                        `json:"displayed"`
	Partners  int                        `json:"partners"`
	Skipped   map[vracmap.SkipReason]int `json:"skipped"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, statsResponse{
		Snapshot:  s.dataset.ID,
		LoadedAt:  s.dataset.LoadedAt,
		Total:     s.report.Total,
		Displayed: len(s.report.Entries),
		Partners:  s.dataset.Index.Len(),
		Skipped:   s.report.Skipped,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("[server] encode error: %v", err)
	}
}
