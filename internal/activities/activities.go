package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"legisense/internal/analysis"
	"legisense/internal/config"
	"legisense/internal/models"
	"legisense/internal/providers"
	"legisense/internal/simulation"
	"legisense/internal/storage"
	"legisense/internal/translate"
	"legisense/internal/util"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

type Activities struct {
	cfg             config.Config
	docRepo         *storage.DocumentRepo
	analysisRepo    *storage.AnalysisRepo
	translationRepo *storage.TranslationRepo
	simRepo         *storage.SimulationRepo
	llmAuditRepo    *storage.LLMAuditRepo
	objects         *storage.ObjectStore
	translator      translate.Translator
	providers       *providers.Manager
}

func New(cfg config.Config, db *storage.DB, objects *storage.ObjectStore, translator translate.Translator) (*Activities, error) {
	pm, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:             cfg,
		docRepo:         storage.NewDocumentRepo(db),
		analysisRepo:    storage.NewAnalysisRepo(db),
		translationRepo: storage.NewTranslationRepo(db),
		simRepo:         storage.NewSimulationRepo(db),
		llmAuditRepo:    storage.NewLLMAuditRepo(db),
		objects:         objects,
		translator:      translator,
		providers:       pm,
	}, nil
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	data, err := a.objects.GetPDF(ctx, in.ObjectKey)
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("fetch uploaded pdf: %w", err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	pages := make([]models.Page, 0, total)
	var full strings.Builder
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		text = util.SanitizeText(strings.TrimSpace(text))
		if text == "" {
			continue
		}
		pages = append(pages, models.Page{PageNumber: i, Text: text})
		if full.Len() > 0 {
			full.WriteString("\n\n")
		}
		full.WriteString(text)
	}
	if len(pages) == 0 {
		return ExtractTextOutput{}, util.ErrNoExtractableText
	}
	return ExtractTextOutput{Pages: pages, FullText: full.String(), NumPages: total}, nil
}

func (a *Activities) PersistExtractionActivity(ctx context.Context, in PersistExtractionInput) error {
	if err := a.docRepo.SetExtracted(ctx, in.DocumentID, in.Pages, in.FullText); err != nil {
		return err
	}
	path := filepath.Join(a.cfg.DataOutRoot, "documents", in.DocumentID, "text.txt")
	return util.WriteTextAtomic(path, in.FullText)
}

func (a *Activities) AnalyzeDocumentActivity(ctx context.Context, in AnalyzeDocumentInput) (AnalyzeDocumentOutput, error) {
	provider, err := a.providers.ByIndex(in.ProviderIndex)
	if err != nil {
		return AnalyzeDocumentOutput{}, err
	}
	res, info, err := analysis.NewAnalyzer(provider).Run(ctx, in.Pages, in.Meta)
	if err != nil {
		return AnalyzeDocumentOutput{}, err
	}
	return AnalyzeDocumentOutput{Result: res, ProviderName: info.Name, Model: info.Model}, nil
}

func (a *Activities) PersistAnalysisActivity(ctx context.Context, in PersistAnalysisInput) (PersistAnalysisOutput, error) {
	output, err := resultToMap(in.Result)
	if err != nil {
		return PersistAnalysisOutput{}, err
	}
	if in.Status == models.AnalysisFailed {
		output = nil
	}
	id, err := a.analysisRepo.Upsert(ctx, models.DocumentAnalysis{
		DocumentID:    in.DocumentID,
		Status:        in.Status,
		Model:         in.Model,
		PromptVersion: "v1",
		Output:        output,
		Error:         in.Error,
	})
	if err != nil {
		return PersistAnalysisOutput{}, err
	}
	if in.Status == models.AnalysisSuccess {
		path := filepath.Join(a.cfg.DataOutRoot, "documents", in.DocumentID, "analysis.json")
		if err := util.WriteJSONAtomic(path, in.Result); err != nil {
			return PersistAnalysisOutput{}, err
		}
	}
	return PersistAnalysisOutput{AnalysisID: id}, nil
}

func (a *Activities) GenerateSimulationActivity(ctx context.Context, in GenerateSimulationInput) (GenerateSimulationOutput, error) {
	provider, err := a.providers.ByIndex(in.ProviderIndex)
	if err != nil {
		return GenerateSimulationOutput{}, err
	}
	doc, err := a.docRepo.GetByID(ctx, in.DocumentID)
	if err != nil {
		return GenerateSimulationOutput{}, err
	}
	policy := simulation.FailFallback
	if in.Raise {
		policy = simulation.FailRaise
	}
	ex, info, err := simulation.NewExtractor(provider, policy).Run(ctx, pageTexts(doc.Pages), map[string]any{
		"file_name": doc.FileName,
		"num_pages": doc.NumPages,
	})
	if err != nil {
		return GenerateSimulationOutput{}, err
	}
	return GenerateSimulationOutput{Extraction: ex, ProviderName: info.Name, Model: info.Model}, nil
}

func (a *Activities) PersistSimulationActivity(ctx context.Context, in PersistSimulationInput) (PersistSimulationOutput, error) {
	id, err := a.simRepo.CreateSession(ctx, in.DocumentID, in.Extraction)
	if err != nil {
		return PersistSimulationOutput{}, err
	}
	path := filepath.Join(a.cfg.DataOutRoot, "documents", in.DocumentID, "simulations", id+".json")
	if err := util.WriteJSONAtomic(path, in.Extraction); err != nil {
		return PersistSimulationOutput{}, err
	}
	return PersistSimulationOutput{SessionID: id}, nil
}

func (a *Activities) CheckExistingSimulationActivity(ctx context.Context, in CheckExistingSimulationInput) (CheckExistingSimulationOutput, error) {
	id, err := a.simRepo.LatestSessionID(ctx, in.DocumentID)
	if err == storage.ErrNotFound {
		return CheckExistingSimulationOutput{}, nil
	}
	if err != nil {
		return CheckExistingSimulationOutput{}, err
	}
	return CheckExistingSimulationOutput{SessionID: id, Found: true}, nil
}

func (a *Activities) TranslateDocumentActivity(ctx context.Context, in TranslateDocumentInput) error {
	doc, err := a.docRepo.GetByID(ctx, in.DocumentID)
	if err != nil {
		return err
	}
	pages, err := translate.TranslatePages(ctx, a.translator, doc.Pages, "en", in.Language)
	if err != nil {
		return err
	}
	fullText, err := a.translator.Translate(ctx, doc.FullText, "en", in.Language)
	if err != nil {
		return err
	}
	return a.translationRepo.UpsertDocumentTranslation(ctx, models.DocumentTranslation{
		DocumentID: in.DocumentID,
		Language:   in.Language,
		Pages:      pages,
		FullText:   fullText,
	})
}

func (a *Activities) TranslateAnalysisActivity(ctx context.Context, in TranslateAnalysisInput) error {
	rec, err := a.analysisRepo.GetByID(ctx, in.AnalysisID)
	if err != nil {
		return err
	}
	if rec.Status != models.AnalysisSuccess {
		return fmt.Errorf("analysis %s is not in a translatable state: %s", in.AnalysisID, rec.Status)
	}
	res := analysis.Normalize(rec.Output)
	translated, err := translate.TranslateAnalysis(ctx, a.translator, res, "en", in.Language)
	if err != nil {
		return err
	}
	output, err := resultToMap(translated)
	if err != nil {
		return err
	}
	return a.translationRepo.UpsertAnalysisTranslation(ctx, models.AnalysisTranslation{
		AnalysisID: in.AnalysisID,
		Language:   in.Language,
		Output:     output,
	})
}

func (a *Activities) TranslateSimulationActivity(ctx context.Context, in TranslateSimulationInput) error {
	sess, err := a.simRepo.GetSession(ctx, in.SessionID)
	if err != nil {
		return err
	}
	translated, err := translate.TranslateExtraction(ctx, a.translator, sess.Data, "en", in.Language)
	if err != nil {
		return err
	}
	return a.simRepo.UpsertTranslation(ctx, in.SessionID, in.Language, translated)
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.docRepo.UpdateStatus(ctx, in.DocumentID, in.Status, in.FailReason)
}

func (a *Activities) LogLLMCallActivity(ctx context.Context, in LogLLMCallInput) error {
	if in.CallID == "" {
		in.CallID = uuid.NewString()
	}
	return a.llmAuditRepo.Insert(ctx, storage.LLMCallRecord{
		CallID:       in.CallID,
		Operation:    in.Operation,
		DocumentID:   in.DocumentID,
		SessionID:    in.SessionID,
		ProviderName: in.ProviderName,
		Model:        in.Model,
		RequestID:    in.RequestID,
		Status:       in.Status,
		ErrorType:    in.ErrorType,
	})
}

func pageTexts(pages []models.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Text)
	}
	return out
}

func resultToMap(res analysis.Result) (map[string]any, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	return m, nil
}
