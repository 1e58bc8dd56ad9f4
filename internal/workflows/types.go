package workflows

type DocumentProcessInput struct {
	DocumentID      string `json:"document_id"`
	ObjectKey       string `json:"object_key"`
	FileName        string `json:"file_name"`
	LLMProviders    int    `json:"llm_providers"`
	CooldownSeconds int    `json:"cooldown_seconds"`
	// SkipTranslations leaves background translation fan-out to on-demand
	// requests.
	SkipTranslations bool `json:"skip_translations"`
}

type SimulationInput struct {
	DocumentID      string `json:"document_id"`
	LLMProviders    int    `json:"llm_providers"`
	CooldownSeconds int    `json:"cooldown_seconds"`
	// Force generates a new session even when one already exists.
	Force bool `json:"force"`
}

type DocumentStatus struct {
	DocumentID   string            `json:"document_id"`
	FileName     string            `json:"file_name"`
	CurrentStep  string            `json:"current_step"`
	Status       string            `json:"status"`
	FailReason   string            `json:"fail_reason,omitempty"`
	AnalysisID   string            `json:"analysis_id,omitempty"`
	Providers    []string          `json:"providers_used"`
	RetryCounts  map[string]int    `json:"retry_counts"`
	Steps        map[string]string `json:"steps"`
	Translations map[string]string `json:"translations"`
}

type SimulationProgress struct {
	DocumentID  string `json:"document_id"`
	SessionID   string `json:"session_id,omitempty"`
	CurrentStep string `json:"current_step"`
	Status      string `json:"status"`
	FailReason  string `json:"fail_reason,omitempty"`
	Reused      bool   `json:"reused"`
}
