package models

import "time"

// Page is one page of extracted PDF text, stored as jsonb on the document.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

type Document struct {
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	ObjectKey  string    `json:"object_key,omitempty"`
	NumPages   int       `json:"num_pages"`
	Pages      []Page    `json:"pages,omitempty"`
	FullText   string    `json:"full_text,omitempty"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DocumentAnalysis struct {
	AnalysisID    string         `json:"analysis_id"`
	DocumentID    string         `json:"document_id"`
	Status        string         `json:"status"`
	Model         string         `json:"model,omitempty"`
	PromptVersion string         `json:"prompt_version,omitempty"`
	Output        map[string]any `json:"output,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Analysis status values.
const (
	AnalysisPending = "pending"
	AnalysisSuccess = "success"
	AnalysisFailed  = "failed"
)

// Document lifecycle statuses, advanced by the processing workflow.
const (
	DocPending     = "pending"
	DocExtracting  = "extracting"
	DocAnalyzing   = "analyzing"
	DocTranslating = "translating"
	DocCompleted   = "completed"
	DocFailed      = "failed"
)

// Languages supported for stored translations. English is the source
// language and is never stored as a translation row.
var SupportedLanguages = []string{"en", "hi", "ta", "te"}

// TranslationTargets are the languages background translation fans out to.
var TranslationTargets = []string{"hi", "ta", "te"}

func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

type DocumentTranslation struct {
	TranslationID string    `json:"translation_id"`
	DocumentID    string    `json:"document_id"`
	Language      string    `json:"language"`
	Pages         []Page    `json:"pages"`
	FullText      string    `json:"full_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AnalysisTranslation struct {
	TranslationID string         `json:"translation_id"`
	AnalysisID    string         `json:"analysis_id"`
	Language      string         `json:"language"`
	Output        map[string]any `json:"output"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type SimulationSessionSummary struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	Scenario  string    `json:"scenario"`
	CreatedAt time.Time `json:"created_at"`
}
