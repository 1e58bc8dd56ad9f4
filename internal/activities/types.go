package activities

import (
	"legisense/internal/analysis"
	"legisense/internal/models"
	"legisense/internal/simulation"
)

type ExtractTextInput struct {
	DocumentID string `json:"document_id"`
	ObjectKey  string `json:"object_key"`
}

type ExtractTextOutput struct {
	Pages    []models.Page `json:"pages"`
	FullText string        `json:"full_text"`
	NumPages int           `json:"num_pages"`
}

type PersistExtractionInput struct {
	DocumentID string        `json:"document_id"`
	Pages      []models.Page `json:"pages"`
	FullText   string        `json:"full_text"`
}

type AnalyzeDocumentInput struct {
	DocumentID    string         `json:"document_id"`
	Pages         []string       `json:"pages"`
	Meta          map[string]any `json:"meta"`
	ProviderIndex int            `json:"provider_index"`
}

type AnalyzeDocumentOutput struct {
	Result       analysis.Result `json:"result"`
	ProviderName string          `json:"provider_name"`
	Model        string          `json:"model"`
}

type PersistAnalysisInput struct {
	DocumentID string          `json:"document_id"`
	Status     string          `json:"status"`
	Model      string          `json:"model"`
	Result     analysis.Result `json:"result"`
	Error      string          `json:"error"`
}

type PersistAnalysisOutput struct {
	AnalysisID string `json:"analysis_id"`
}

type GenerateSimulationInput struct {
	DocumentID    string `json:"document_id"`
	ProviderIndex int    `json:"provider_index"`
	// Raise makes model failures propagate instead of producing a
	// placeholder fallback session.
	Raise bool `json:"raise"`
}

type GenerateSimulationOutput struct {
	Extraction   simulation.Extraction `json:"extraction"`
	ProviderName string                `json:"provider_name"`
	Model        string                `json:"model"`
}

type PersistSimulationInput struct {
	DocumentID string                `json:"document_id"`
	Extraction simulation.Extraction `json:"extraction"`
}

type PersistSimulationOutput struct {
	SessionID string `json:"session_id"`
}

type CheckExistingSimulationInput struct {
	DocumentID string `json:"document_id"`
}

type CheckExistingSimulationOutput struct {
	SessionID string `json:"session_id"`
	Found     bool   `json:"found"`
}

type TranslateDocumentInput struct {
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
}

type TranslateAnalysisInput struct {
	AnalysisID string `json:"analysis_id"`
	Language   string `json:"language"`
}

type TranslateSimulationInput struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

type UpdateDocumentStatusInput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason"`
}

type LogLLMCallInput struct {
	CallID       string `json:"call_id"`
	Operation    string `json:"operation"`
	DocumentID   string `json:"document_id"`
	SessionID    string `json:"session_id"`
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
	RequestID    string `json:"request_id"`
	Status       string `json:"status"`
	ErrorType    string `json:"error_type"`
}
