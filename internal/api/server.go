package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"legisense/internal/config"
	"legisense/internal/providers"
	"legisense/internal/storage"
	"legisense/internal/translate"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg             config.Config
	db              *storage.DB
	docRepo         *storage.DocumentRepo
	analysisRepo    *storage.AnalysisRepo
	translationRepo *storage.TranslationRepo
	simRepo         *storage.SimulationRepo
	objects         *storage.ObjectStore
	providers       *providers.Manager
	translator      translate.Translator
	gemini          *providers.GeminiClient
	temporal        tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	objects, err := storage.NewObjectStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:             cfg,
		db:              db,
		docRepo:         storage.NewDocumentRepo(db),
		analysisRepo:    storage.NewAnalysisRepo(db),
		translationRepo: storage.NewTranslationRepo(db),
		simRepo:         storage.NewSimulationRepo(db),
		objects:         objects,
		providers:       pm,
		translator:      translate.NewGoogleTranslator(),
		gemini:          providers.NewGeminiClient(),
		temporal:        tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/healthz", s.handleHealthz)

	mux.Route("/documents", func(rt chi.Router) {
		rt.Post("/", s.handleUploadDocument)
		rt.Get("/", s.handleListDocuments)
		rt.Route("/{documentID}", func(rd chi.Router) {
			rd.Get("/", s.handleGetDocument)
			rd.Get("/progress", s.handleDocumentProgress)
			rd.Get("/analysis", s.handleGetAnalysis)
			rd.Post("/analyze", s.handleReanalyze)
			rd.Post("/translate", s.handleTranslateDocument)
			rd.Get("/translations", s.handleListDocumentTranslations)
			rd.Post("/simulate", s.handleSimulate)
			rd.Get("/simulations", s.handleListSimulations)
		})
	})

	mux.Route("/simulations", func(rt chi.Router) {
		rt.Post("/import", s.handleImportSimulation)
		rt.Get("/{sessionID}", s.handleGetSimulation)
		rt.Post("/{sessionID}/translate", s.handleTranslateSimulation)
		rt.Get("/{sessionID}/translations", s.handleListSimulationTranslations)
	})

	mux.Route("/analyses/{analysisID}", func(rt chi.Router) {
		rt.Post("/translate", s.handleTranslateAnalysis)
		rt.Get("/translations", s.handleListAnalysisTranslations)
	})

	mux.Post("/chat", s.handleChat)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "LS-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "LS-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "LS-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "LS-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "LS-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "LS-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "LS-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "LS-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusBadGateway:
		code = "LS-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "no pdf file"):
			msg = "No PDF file was provided."
		case strings.Contains(raw, "only pdf"):
			msg = "Only PDF uploads are supported."
		case strings.Contains(raw, "unsupported language"):
			msg = "Unsupported language. Use one of: en, hi, ta, te."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "message is required"):
			msg = "A chat message is required."
		case strings.Contains(raw, "too large"):
			msg = "Uploaded file exceeds the size limit."
		}
	}

	return apiError{Code: code, Message: msg}
}
