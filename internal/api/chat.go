package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"legisense/internal/models"
	"legisense/internal/storage"
	"legisense/internal/util"
)

const chatSystemPrompt = "You are Legisense AI, an assistant that explains legal documents in plain language. " +
	"Answer clearly and concisely. When document text is provided, ground your answer in it. " +
	"You are not a lawyer and must not present answers as legal advice."

const chatContextCharBudget = 6000

// handleChat proxies a free-form question to Gemini, optionally grounding it
// in an uploaded document's extracted text.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message    string `json:"message"`
		DocumentID string `json:"document_id"`
		Language   string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}
	lang := strings.TrimSpace(req.Language)
	if lang != "" && !models.IsSupportedLanguage(lang) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported language: %s", lang))
		return
	}

	prompt := msg
	if req.DocumentID != "" {
		doc, err := s.docRepo.GetByID(r.Context(), req.DocumentID)
		if errors.Is(err, storage.ErrNotFound) {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		if doc.FullText != "" {
			prompt = "Document (" + doc.FileName + "):\n" +
				util.TruncateMiddle(doc.FullText, chatContextCharBudget) +
				"\n\nQuestion:\n" + msg
		}
	}

	reply, err := s.gemini.GenerateText(r.Context(), prompt, chatSystemPrompt)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}

	if lang != "" && lang != "en" {
		translated, err := s.translator.Translate(r.Context(), reply, "en", lang)
		if err == nil {
			reply = translated
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"reply": reply, "language": orDefault(lang, "en")})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
