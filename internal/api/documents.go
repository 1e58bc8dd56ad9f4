package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"legisense/internal/analysis"
	"legisense/internal/models"
	"legisense/internal/storage"
	"legisense/internal/translate"
	"legisense/internal/util"
	"legisense/internal/workflows"

	"github.com/go-chi/chi/v5"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadBytes))
	if err := r.ParseMultipartForm(int64(s.cfg.MaxUploadBytes)); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("upload too large or malformed: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no pdf file provided"))
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("only pdf uploads are supported"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	// Content-addressed key, so re-uploading the same file reuses the object.
	objectKey := "uploads/" + util.SHA256Hex(data) + ".pdf"
	if err := s.objects.PutPDF(r.Context(), objectKey, data); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	docID, err := s.docRepo.Create(r.Context(), models.Document{
		FileName:  header.Filename,
		ObjectKey: objectKey,
		Status:    models.DocPending,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    workflows.DocumentWorkflowID(docID),
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.DocumentProcessWorkflow, workflows.DocumentProcessInput{
		DocumentID:      docID,
		ObjectKey:       objectKey,
		FileName:        header.Filename,
		LLMProviders:    s.providers.Count(),
		CooldownSeconds: s.cfg.ProviderCooldownSecs,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id": docID,
		"file_name":   header.Filename,
		"status":      models.DocPending,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docRepo.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	doc, err := s.docRepo.GetByID(r.Context(), docID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang != "" && lang != "en" {
		if !models.IsSupportedLanguage(lang) {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported language: %s", lang))
			return
		}
		tr, err := s.translationRepo.GetDocumentTranslation(r.Context(), docID, lang)
		if err == nil {
			doc.Pages = tr.Pages
			doc.FullText = tr.FullText
			writeJSON(w, http.StatusOK, map[string]any{"document": doc, "language": lang})
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		// fall through to the original text when no translation is stored
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc, "language": "en"})
}

func (s *Server) handleDocumentProgress(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	resp, err := s.temporal.QueryWorkflow(r.Context(), workflows.DocumentWorkflowID(docID), "", workflows.QueryGetDocumentStatus)
	if err == nil {
		var status workflows.DocumentStatus
		if err := resp.Get(&status); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// No queryable workflow; derive progress from the document row.
	doc, dErr := s.docRepo.GetByID(r.Context(), docID)
	if errors.Is(dErr, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, dErr)
		return
	}
	if dErr != nil {
		writeErr(w, http.StatusInternalServerError, dErr)
		return
	}
	writeJSON(w, http.StatusOK, workflows.DocumentStatus{
		DocumentID: doc.DocumentID,
		FileName:   doc.FileName,
		Status:     doc.Status,
		FailReason: doc.FailReason,
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	rec, err := s.analysisRepo.GetByDocument(r.Context(), docID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang != "" && lang != "en" && rec.Status == models.AnalysisSuccess {
		if !models.IsSupportedLanguage(lang) {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported language: %s", lang))
			return
		}
		tr, trErr := s.translationRepo.GetAnalysisTranslation(r.Context(), rec.AnalysisID, lang)
		if trErr == nil {
			rec.Output = tr.Output
			writeJSON(w, http.StatusOK, map[string]any{"analysis": rec, "language": lang})
			return
		}
		if !errors.Is(trErr, storage.ErrNotFound) {
			writeErr(w, http.StatusInternalServerError, trErr)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": rec, "language": "en"})
}

func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	doc, err := s.docRepo.GetByID(r.Context(), docID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    workflows.DocumentWorkflowID(docID),
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.DocumentProcessWorkflow, workflows.DocumentProcessInput{
		DocumentID:      docID,
		ObjectKey:       doc.ObjectKey,
		FileName:        doc.FileName,
		LLMProviders:    s.providers.Count(),
		CooldownSeconds: s.cfg.ProviderCooldownSecs,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

// handleTranslateDocument translates document text on demand and stores the
// result. Re-running it refreshes the stored translation.
func (s *Server) handleTranslateDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	lang, ok := decodeLanguage(w, r)
	if !ok {
		return
	}
	doc, err := s.docRepo.GetByID(r.Context(), docID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	pages, err := translate.TranslatePages(r.Context(), s.translator, doc.Pages, "en", lang)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	fullText, err := s.translator.Translate(r.Context(), doc.FullText, "en", lang)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	if err := s.translationRepo.UpsertDocumentTranslation(r.Context(), models.DocumentTranslation{
		DocumentID: docID,
		Language:   lang,
		Pages:      pages,
		FullText:   fullText,
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"language":    lang,
		"pages":       pages,
	})
}

func (s *Server) handleListDocumentTranslations(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	langs, err := s.translationRepo.ListDocumentTranslationLanguages(r.Context(), docID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": docID, "languages": langs})
}

func (s *Server) handleTranslateAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisID")
	lang, ok := decodeLanguage(w, r)
	if !ok {
		return
	}
	rec, err := s.analysisRepo.GetByID(r.Context(), analysisID)
	if errors.Is(err, storage.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if rec.Status != models.AnalysisSuccess {
		writeErr(w, http.StatusConflict, fmt.Errorf("analysis is not in a translatable state"))
		return
	}

	res := analysis.Normalize(rec.Output)
	translated, err := translate.TranslateAnalysis(r.Context(), s.translator, res, "en", lang)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	outputJSON, err := json.Marshal(translated)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	var output map[string]any
	if err := json.Unmarshal(outputJSON, &output); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.translationRepo.UpsertAnalysisTranslation(r.Context(), models.AnalysisTranslation{
		AnalysisID: analysisID,
		Language:   lang,
		Output:     output,
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_id": analysisID,
		"language":    lang,
		"output":      output,
	})
}

func (s *Server) handleListAnalysisTranslations(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisID")
	langs, err := s.translationRepo.ListAnalysisTranslationLanguages(r.Context(), analysisID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis_id": analysisID, "languages": langs})
}

func decodeLanguage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return "", false
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" || lang == "en" || !models.IsSupportedLanguage(lang) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported language: %q", lang))
		return "", false
	}
	return lang, true
}
