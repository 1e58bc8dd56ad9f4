package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"legisense/internal/models"
	"legisense/internal/simulation"
	"legisense/internal/storage"
	"legisense/internal/translate"
	"legisense/internal/workflows"

	"github.com/go-chi/chi/v5"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// handleSimulate returns the latest session for the document, or starts the
// simulation workflow when none exists yet (or when force is set). The call
// blocks until the workflow finishes so the client gets a session id back.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	if _, err := s.docRepo.GetByID(r.Context(), docID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Force bool `json:"force"`
	}
	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
				return
			}
		}
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    workflows.SimulationWorkflowID(docID),
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.SimulationWorkflow, workflows.SimulationInput{
		DocumentID:      docID,
		LLMProviders:    s.providers.Count(),
		CooldownSeconds: s.cfg.ProviderCooldownSecs,
		Force:           req.Force,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	var sessionID string
	if err := we.Get(r.Context(), &sessionID); err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"session_id":  sessionID,
		"workflow_id": we.GetID(),
	})
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	sessions, err := s.simRepo.ListByDocument(r.Context(), docID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": docID, "sessions": sessions})
}

// handleGetSimulation serves a stored session. With ?lang= it serves the
// stored translation, translating and caching it on first request.
func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := s.simRepo.GetSession(r.Context(), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" || lang == "en" {
		writeJSON(w, http.StatusOK, map[string]any{"session": sess, "language": "en"})
		return
	}
	if !models.IsSupportedLanguage(lang) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported language: %s", lang))
		return
	}

	ex, err := s.simRepo.GetTranslation(r.Context(), sessionID, lang)
	if errors.Is(err, storage.ErrNotFound) {
		ex, err = translate.TranslateExtraction(r.Context(), s.translator, sess.Data, "en", lang)
		if err != nil {
			writeErr(w, http.StatusBadGateway, err)
			return
		}
		if err := s.simRepo.UpsertTranslation(r.Context(), sessionID, lang, ex); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
	} else if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	sess.Data = ex
	writeJSON(w, http.StatusOK, map[string]any{"session": sess, "language": lang})
}

func (s *Server) handleTranslateSimulation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	lang, ok := decodeLanguage(w, r)
	if !ok {
		return
	}
	sess, err := s.simRepo.GetSession(r.Context(), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	ex, err := translate.TranslateExtraction(r.Context(), s.translator, sess.Data, "en", lang)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	if err := s.simRepo.UpsertTranslation(r.Context(), sessionID, lang, ex); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"language":   lang,
		"data":       ex,
	})
}

func (s *Server) handleListSimulationTranslations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	langs, err := s.simRepo.ListTranslationLanguages(r.Context(), sessionID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "languages": langs})
}

// handleImportSimulation stores an externally produced simulation payload
// against a document, after the same normalization the pipeline applies.
func (s *Server) handleImportSimulation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string         `json:"document_id"`
		Payload    map[string]any `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: document_id is required"))
		return
	}
	if _, err := s.docRepo.GetByID(r.Context(), req.DocumentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	ex, err := simulation.FromRaw(req.Payload)
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	ex.Session.Parameters["source"] = "import"

	sessionID, err := s.simRepo.CreateSession(r.Context(), req.DocumentID, ex)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document_id": req.DocumentID,
		"session_id":  sessionID,
	})
}
