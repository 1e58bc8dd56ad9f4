package workflows

import (
	"fmt"
	"strings"
	"time"

	"legisense/internal/activities"
	"legisense/internal/models"
	"legisense/internal/providers"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetDocumentStatus     = "GetDocumentStatus"
	QueryGetSimulationProgress = "GetSimulationProgress"
)

// SimulationWorkflowID returns the deterministic workflow ID used for a
// document's simulation, so concurrent requests dedupe on the Temporal side.
func SimulationWorkflowID(documentID string) string {
	return "simulate-" + documentID
}

// DocumentWorkflowID is the workflow ID for a document's processing run.
func DocumentWorkflowID(documentID string) string {
	return "document-" + documentID
}

type providerState struct {
	disabledUntil map[int]time.Time
	retries       map[string]int
}

func newProviderState() providerState {
	return providerState{disabledUntil: map[int]time.Time{}, retries: map[string]int{}}
}

func DocumentProcessWorkflow(ctx workflow.Context, input DocumentProcessInput) (string, error) {
	status := DocumentStatus{
		DocumentID:   input.DocumentID,
		FileName:     input.FileName,
		CurrentStep:  "init",
		Status:       "processing",
		RetryCounts:  map[string]int{},
		Steps:        map[string]string{},
		Translations: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDocumentStatus, func() (DocumentStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	cooldown := durationOrDefault(input.CooldownSeconds, 900)
	providerCount := defaultCount(input.LLMProviders)
	state := newProviderState()

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID, Status: models.DocExtracting,
	}).Get(ctx, nil)

	status.CurrentStep = "extract_text"
	status.Steps[status.CurrentStep] = "processing"
	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractTextActivity", activities.ExtractTextInput{
		DocumentID: input.DocumentID, ObjectKey: input.ObjectKey,
	}).Get(ctx, &textOut); err != nil {
		if isNoTextError(err) {
			status.Status = models.DocFailed
			status.FailReason = "no extractable text found (scanned PDFs are not supported)"
			status.Steps[status.CurrentStep] = "failed"
			_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
				DocumentID: input.DocumentID, Status: models.DocFailed, FailReason: status.FailReason,
			}).Get(ctx, nil)
			return status.Status, nil
		}
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "persist_extraction"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "PersistExtractionActivity", activities.PersistExtractionInput{
		DocumentID: input.DocumentID, Pages: textOut.Pages, FullText: textOut.FullText,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID, Status: models.DocAnalyzing,
	}).Get(ctx, nil)

	status.CurrentStep = "analyze"
	status.Steps[status.CurrentStep] = "processing"
	analyzeOut, err := callAnalyzeWithFailover(ctx, &state, providerCount, cooldown, activities.AnalyzeDocumentInput{
		DocumentID: input.DocumentID,
		Pages:      pageTexts(textOut.Pages),
		Meta: map[string]any{
			"file_name": input.FileName,
			"num_pages": textOut.NumPages,
		},
	}, status.RetryCounts)
	if err != nil {
		status.Status = models.DocFailed
		status.FailReason = "analysis failed: " + err.Error()
		status.Steps[status.CurrentStep] = "failed"
		_ = workflow.ExecuteActivity(ctx, "PersistAnalysisActivity", activities.PersistAnalysisInput{
			DocumentID: input.DocumentID, Status: models.AnalysisFailed, Error: err.Error(),
		}).Get(ctx, nil)
		_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
			DocumentID: input.DocumentID, Status: models.DocFailed, FailReason: status.FailReason,
		}).Get(ctx, nil)
		return status.Status, nil
	}
	status.Providers = append(status.Providers, analyzeOut.ProviderName)
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "persist_analysis"
	status.Steps[status.CurrentStep] = "processing"
	var persistOut activities.PersistAnalysisOutput
	if err := workflow.ExecuteActivity(ctx, "PersistAnalysisActivity", activities.PersistAnalysisInput{
		DocumentID: input.DocumentID,
		Status:     models.AnalysisSuccess,
		Model:      analyzeOut.Model,
		Result:     analyzeOut.Result,
	}).Get(ctx, &persistOut); err != nil {
		return "", err
	}
	status.AnalysisID = persistOut.AnalysisID
	status.Steps[status.CurrentStep] = "done"

	if !input.SkipTranslations {
		_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
			DocumentID: input.DocumentID, Status: models.DocTranslating,
		}).Get(ctx, nil)
		status.CurrentStep = "translate"
		status.Steps[status.CurrentStep] = "processing"
		for _, lang := range models.TranslationTargets {
			status.Translations[lang] = "processing"
			if err := workflow.ExecuteActivity(ctx, "TranslateDocumentActivity", activities.TranslateDocumentInput{
				DocumentID: input.DocumentID, Language: lang,
			}).Get(ctx, nil); err != nil {
				status.Translations[lang] = "failed"
				continue
			}
			if err := workflow.ExecuteActivity(ctx, "TranslateAnalysisActivity", activities.TranslateAnalysisInput{
				AnalysisID: persistOut.AnalysisID, Language: lang,
			}).Get(ctx, nil); err != nil {
				status.Translations[lang] = "failed"
				continue
			}
			status.Translations[lang] = "done"
		}
		status.Steps[status.CurrentStep] = "done"
	}

	if err := workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID, Status: models.DocCompleted,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.CurrentStep = "done"
	status.Status = models.DocCompleted
	return status.Status, nil
}

// SimulationWorkflow generates (or reuses) a simulation session for a
// document and returns the session ID.
func SimulationWorkflow(ctx workflow.Context, input SimulationInput) (string, error) {
	progress := SimulationProgress{
		DocumentID:  input.DocumentID,
		CurrentStep: "init",
		Status:      "processing",
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetSimulationProgress, func() (SimulationProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	cooldown := durationOrDefault(input.CooldownSeconds, 900)
	providerCount := defaultCount(input.LLMProviders)
	state := newProviderState()

	if !input.Force {
		progress.CurrentStep = "check_existing"
		var existing activities.CheckExistingSimulationOutput
		if err := workflow.ExecuteActivity(ctx, "CheckExistingSimulationActivity", activities.CheckExistingSimulationInput{
			DocumentID: input.DocumentID,
		}).Get(ctx, &existing); err != nil {
			return "", err
		}
		if existing.Found {
			progress.SessionID = existing.SessionID
			progress.Reused = true
			progress.Status = "completed"
			progress.CurrentStep = "done"
			return existing.SessionID, nil
		}
	}

	progress.CurrentStep = "generate"
	genOut, err := callSimulateWithFailover(ctx, &state, providerCount, cooldown, activities.GenerateSimulationInput{
		DocumentID: input.DocumentID,
	}, state.retries)
	if err != nil {
		progress.Status = "failed"
		progress.FailReason = err.Error()
		return "", err
	}

	progress.CurrentStep = "persist"
	var persistOut activities.PersistSimulationOutput
	if err := workflow.ExecuteActivity(ctx, "PersistSimulationActivity", activities.PersistSimulationInput{
		DocumentID: input.DocumentID, Extraction: genOut.Extraction,
	}).Get(ctx, &persistOut); err != nil {
		return "", err
	}
	progress.SessionID = persistOut.SessionID

	// Best effort; a failed translation never fails the simulation.
	progress.CurrentStep = "translate"
	for _, lang := range models.TranslationTargets {
		_ = workflow.ExecuteActivity(ctx, "TranslateSimulationActivity", activities.TranslateSimulationInput{
			SessionID: persistOut.SessionID, Language: lang,
		}).Get(ctx, nil)
	}

	progress.Status = "completed"
	progress.CurrentStep = "done"
	return persistOut.SessionID, nil
}

// callAnalyzeWithFailover walks the provider pool, disabling providers that
// hit quota or rate limits, the same way the simulation path does.
func callAnalyzeWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.AnalyzeDocumentInput, retryCounts map[string]int) (activities.AnalyzeDocumentOutput, error) {
	if retryCounts == nil {
		retryCounts = map[string]int{}
	}
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.AnalyzeDocumentOutput
		err := workflow.ExecuteActivity(ctx, "AnalyzeDocumentActivity", input).Get(ctx, &out)
		if err == nil {
			_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
				Operation: "analysis", DocumentID: input.DocumentID, ProviderName: out.ProviderName,
				Model: out.Model, RequestID: fmt.Sprintf("analysis-%d", attempt), Status: "ok",
			}).Get(ctx, nil)
			return out, nil
		}
		lastErr = err
		errType := providers.ClassifyError(err)
		_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
			Operation: "analysis", DocumentID: input.DocumentID, ProviderName: fmt.Sprintf("provider-%d", idx),
			RequestID: fmt.Sprintf("analysis-%d", attempt), Status: "failed", ErrorType: string(errType),
		}).Get(ctx, nil)
		key := fmt.Sprintf("analysis-%d", idx)
		retryCounts[key]++
		switch errType {
		case providers.ErrorQuota:
			disableProviderUntil(ctx, state, idx, cooldown)
		case providers.ErrorRate:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key]*2)*time.Second)
				attempt--
			} else {
				disableProviderUntil(ctx, state, idx, 2*time.Minute)
			}
		case providers.ErrorTransient:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key])*time.Second)
				attempt--
			}
		default:
			disableProviderUntil(ctx, state, idx, time.Minute)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all llm providers exhausted")
	}
	return activities.AnalyzeDocumentOutput{}, lastErr
}

// callSimulateWithFailover tries each provider with failures raised so that
// quota and rate errors rotate the pool. Once the pool is exhausted it asks
// the last provider for a fallback session instead of failing the workflow.
func callSimulateWithFailover(ctx workflow.Context, state *providerState, providerCount int, cooldown time.Duration, input activities.GenerateSimulationInput, retryCounts map[string]int) (activities.GenerateSimulationOutput, error) {
	if retryCounts == nil {
		retryCounts = map[string]int{}
	}
	input.Raise = true
	var lastErr error
	for attempt := 0; attempt < providerCount*4; attempt++ {
		idx := attempt % providerCount
		if isProviderDisabled(ctx, state, idx) {
			continue
		}
		input.ProviderIndex = idx
		var out activities.GenerateSimulationOutput
		err := workflow.ExecuteActivity(ctx, "GenerateSimulationActivity", input).Get(ctx, &out)
		if err == nil {
			_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
				Operation: "simulation", DocumentID: input.DocumentID, ProviderName: out.ProviderName,
				Model: out.Model, RequestID: fmt.Sprintf("simulation-%d", attempt), Status: "ok",
			}).Get(ctx, nil)
			return out, nil
		}
		lastErr = err
		errType := providers.ClassifyError(err)
		_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
			Operation: "simulation", DocumentID: input.DocumentID, ProviderName: fmt.Sprintf("provider-%d", idx),
			RequestID: fmt.Sprintf("simulation-%d", attempt), Status: "failed", ErrorType: string(errType),
		}).Get(ctx, nil)
		key := fmt.Sprintf("simulation-%d", idx)
		retryCounts[key]++
		switch errType {
		case providers.ErrorQuota:
			disableProviderUntil(ctx, state, idx, cooldown)
		case providers.ErrorRate:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key]*2)*time.Second)
				attempt--
			} else {
				disableProviderUntil(ctx, state, idx, 2*time.Minute)
			}
		case providers.ErrorTransient:
			if retryCounts[key] <= 2 {
				workflow.Sleep(ctx, time.Duration(retryCounts[key])*time.Second)
				attempt--
			}
		default:
			disableProviderUntil(ctx, state, idx, time.Minute)
		}
	}

	input.Raise = false
	input.ProviderIndex = 0
	var out activities.GenerateSimulationOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateSimulationActivity", input).Get(ctx, &out); err != nil {
		if lastErr != nil {
			return activities.GenerateSimulationOutput{}, lastErr
		}
		return activities.GenerateSimulationOutput{}, err
	}
	return out, nil
}

func isProviderDisabled(ctx workflow.Context, state *providerState, idx int) bool {
	until, ok := state.disabledUntil[idx]
	if !ok {
		return false
	}
	return workflow.Now(ctx).Before(until)
}

func disableProviderUntil(ctx workflow.Context, state *providerState, idx int, d time.Duration) {
	state.disabledUntil[idx] = workflow.Now(ctx).Add(d)
}

func isNoTextError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no extractable text")
}

func pageTexts(pages []models.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Text)
	}
	return out
}

func durationOrDefault(seconds int, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

func defaultCount(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
