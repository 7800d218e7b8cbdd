// Package api exposes retrieval over HTTP for callers that cannot shell out
// to the CLI (agent frameworks, notebooks).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docrag/internal/domain"
	"docrag/internal/usecase"
)

// Server is the HTTP search API.
type Server struct {
	router chi.Router
	search *usecase.SearchUseCase
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server. An empty apiKey
// disables authentication.
func NewServer(search *usecase.SearchUseCase, log *slog.Logger, apiKey string) *Server {
	s := &Server{
		search: search,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(AuthMiddleware(apiKey))
		}
		r.Post("/api/search", s.handleSearch)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type searchRequest struct {
	Question      string `json:"question"`
	TopK          int    `json:"top_k"`
	Comprehensive bool   `json:"comprehensive"`
}

type searchResponse struct {
	Context     string   `json:"context"`
	Passages    []string `json:"passages"`
	NumPassages int      `json:"num_passages"`
	TotalChars  int      `json:"total_chars"`
	Truncated   bool     `json:"truncated"`
	Diagnostic  string   `json:"diagnostic,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := s.runSearch(req)
	if err != nil {
		s.log.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	resp := searchResponse{
		Context:     usecase.JoinContext(result),
		Passages:    result.Passages,
		NumPassages: len(result.Passages),
		TotalChars:  result.TotalChars,
		Truncated:   result.Truncated,
		Diagnostic:  result.Diagnostic,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) runSearch(req searchRequest) (domain.RetrievalContext, error) {
	if req.Comprehensive {
		return s.search.ComprehensiveSearch(req.Question)
	}
	return s.search.Search(req.Question, req.TopK)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
