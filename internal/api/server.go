package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codewithboateng/codesafe/internal/enhance"
	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/rules"
	"github.com/codewithboateng/codesafe/internal/storage"
)

// Store is the history contract the API needs.
type Store interface {
	Save(ctx context.Context, fileName, language string, findings []model.Finding) (model.Scan, error)
	List(ctx context.Context, limit, offset int) ([]storage.ScanRow, error)
	ListByFile(ctx context.Context, fileName string, limit int) ([]storage.ScanRow, error)
	LoadScan(ctx context.Context, id string) (model.Scan, error)
	LoadLatest(ctx context.Context, fileName string) (model.Scan, error)

	ListSuppressions(ctx context.Context, activeOnly bool) ([]model.Suppression, error)
	CreateSuppression(ctx context.Context, s model.Suppression) (int64, error)
	RevokeSuppression(ctx context.Context, id int64) error
}

// UserStore is the auth/audit contract the API uses.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (storage.User, string, error)
	CreateSession(ctx context.Context, userID int64, token string, expires time.Time) error
	GetSession(ctx context.Context, token string) (storage.User, error)
	DeleteSession(ctx context.Context, token string) error
	LogAudit(ctx context.Context, username, action, resource string, meta map[string]any) error
}

// Enhancer is the enhancement boundary; *enhance.Client satisfies it.
type Enhancer interface {
	Enhance(ctx context.Context, req enhance.Request) (string, error)
}

type Server struct {
	DB              Store
	UserStore       UserStore
	Scanner         *rules.Scanner
	Enhancer        Enhancer // nil disables POST /enhance
	Logger          *slog.Logger
	AllowedOrigins  []string
	SessionDuration time.Duration
	MaxUploadBytes  int64
}

func (s *Server) Routes() http.Handler {
	if s.Scanner == nil {
		s.Scanner = rules.New()
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.SessionDuration == 0 {
		s.SessionDuration = 12 * time.Hour
	}
	if s.MaxUploadBytes == 0 {
		s.MaxUploadBytes = 2 << 20
	}

	mux := http.NewServeMux()

	withCORS := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if origin := s.pickCORSOrigin(r); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS, POST")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h(w, r)
		}
	}

	// Health
	mux.HandleFunc("GET /api/v1/health", withCORS(s.handleHealth))

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", withCORS(s.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", withCORS(withAuth(s, s.handleLogout, "auth:logout")))
	mux.HandleFunc("GET /api/v1/me", withCORS(withAuth(s, s.handleMe, "me")))

	// Scans (history)
	mux.HandleFunc("POST /api/v1/scans", withCORS(withAuth(s, s.handleCreateScan, "scans:create")))
	mux.HandleFunc("GET /api/v1/scans", withCORS(withAuth(s, s.handleListScans, "scans:list")))
	mux.HandleFunc("GET /api/v1/scans/latest", withCORS(withAuth(s, s.handleGetLatest, "scans:latest")))
	mux.HandleFunc("GET /api/v1/scans/{id}", withCORS(withAuth(s, s.handleGetScan, "scans:get")))
	mux.HandleFunc("GET /api/v1/scans/{id}/findings", withCORS(withAuth(s, s.handleListFindings, "scans:findings")))

	// Rules inventory (read-only, no auth)
	mux.HandleFunc("GET /api/v1/rules", withCORS(s.handleRules))

	// Enhancement
	mux.HandleFunc("POST /api/v1/enhance", withCORS(withAuth(s, s.handleEnhance, "enhance")))

	// Suppressions
	mux.HandleFunc("GET /api/v1/suppressions", withCORS(withAuth(s, s.handleListSuppressions, "suppressions:list")))
	mux.HandleFunc("POST /api/v1/suppressions", withCORS(withAdmin(s, s.handleCreateSuppression, "suppressions:create")))
	mux.HandleFunc("POST /api/v1/suppressions/{id}/revoke", withCORS(withAdmin(s, s.handleRevokeSuppression, "suppressions:revoke")))

	// Fallback 404
	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		s.err(w, http.StatusNotFound, "not found")
	}))
	return mux
}

func (s *Server) pickCORSOrigin(r *http.Request) string {
	if len(s.AllowedOrigins) == 0 {
		return ""
	}
	origin := r.Header.Get("Origin")
	for _, ao := range s.AllowedOrigins {
		if ao == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(origin, ao) {
			return origin
		}
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
		"enhance":   s.Enhancer != nil,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID          string `json:"id"`
		Severity    string `json:"severity"`
		Detector    string `json:"detector"`
		Message     string `json:"message"`
		Improvement string `json:"improvement"`
	}
	exts := s.Scanner.Languages()
	if ext := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("ext"))); ext != "" {
		exts = []string{ext}
	}
	profiles := map[string][]R{}
	for _, ext := range exts {
		out := []R{}
		for _, rr := range s.Scanner.Rules(ext) {
			out = append(out, R{
				ID: rr.ID, Severity: string(rr.Severity), Detector: rr.Detect.String(),
				Message: rr.Message, Improvement: rr.Improvement,
			})
		}
		profiles[ext] = out
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
