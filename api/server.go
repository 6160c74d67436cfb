// Package api exposes the normalizer over HTTP.
// It can be started from the CLI or mounted programmatically via Handler.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/budget-finance/budget/extractor"
	"github.com/budget-finance/budget/extractor/common"
	"github.com/budget-finance/budget/logger"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration
type Config struct {
	Port string
	// Sink receives normalized transactions; nil only normalizes.
	Sink extractor.Sink
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port: ":8080",
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
	log    zerolog.Logger
}

// NormalizeResponse is the body returned by /normalize.
type NormalizeResponse struct {
	Filename     string               `json:"filename"`
	Dialect      extractor.Dialect    `json:"dialect"`
	Skipped      bool                 `json:"skipped"`
	Inserted     int                  `json:"inserted"`
	Duplicates   int                  `json:"duplicates"`
	Transactions []common.Transaction `json:"transactions"`
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		log:    logger.New().With().Str("component", "api").Logger(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/normalize", s.handleNormalize)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.log.Info().Str("port", s.config.Port).Msg("starting server")
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleNormalize accepts one CSV export as the multipart field "file".
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Str("remote", r.RemoteAddr).Msg("received request")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Warn().Err(err).Msg("error parsing multipart form")
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.log.Warn().Err(err).Msg("error getting file from form")
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := logger.WithContext(r.Context(), s.log)
	result, err := extractor.ProcessReader(ctx, file, header.Filename, s.config.Sink)
	if err != nil {
		var sinkErr *extractor.SinkError
		if errors.As(err, &sinkErr) {
			s.log.Error().Err(err).Msg("error storing transactions")
			http.Error(w, "Could not store transactions: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.log.Warn().Err(err).Msg("error reading statement")
		http.Error(w, "Could not read statement: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(NormalizeResponse{
		Filename:     header.Filename,
		Dialect:      result.Dialect,
		Skipped:      result.Dialect == extractor.Unrecognized,
		Inserted:     result.Inserted,
		Duplicates:   result.Duplicates,
		Transactions: result.Transactions,
	})
}
