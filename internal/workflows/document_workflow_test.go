package workflows

import (
	"context"
	"errors"
	"testing"

	"legisense/internal/activities"
	"legisense/internal/analysis"
	"legisense/internal/models"
	"legisense/internal/simulation"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerDocumentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "UpdateDocumentStatusActivity", func(context.Context, activities.UpdateDocumentStatusInput) error { return nil })
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "PersistExtractionActivity", func(context.Context, activities.PersistExtractionInput) error { return nil })
	registerActivityName(env, "AnalyzeDocumentActivity", func(context.Context, activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
		return activities.AnalyzeDocumentOutput{}, nil
	})
	registerActivityName(env, "PersistAnalysisActivity", func(context.Context, activities.PersistAnalysisInput) (activities.PersistAnalysisOutput, error) {
		return activities.PersistAnalysisOutput{}, nil
	})
	registerActivityName(env, "TranslateDocumentActivity", func(context.Context, activities.TranslateDocumentInput) error { return nil })
	registerActivityName(env, "TranslateAnalysisActivity", func(context.Context, activities.TranslateAnalysisInput) error { return nil })
	registerActivityName(env, "LogLLMCallActivity", func(context.Context, activities.LogLLMCallInput) error { return nil })
}

func TestDocumentProcessWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	pages := []models.Page{{PageNumber: 1, Text: "clause text"}}
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{DocumentID: "doc1", ObjectKey: "uploads/abc.pdf"}).
		Return(activities.ExtractTextOutput{Pages: pages, FullText: "clause text", NumPages: 1}, nil)
	env.OnActivity("PersistExtractionActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.AnalyzeDocumentOutput{
			Result:       analysis.Result{TLDRBullets: []string{"ok"}, Clauses: []analysis.Clause{}, RiskFlags: []analysis.RiskFlag{}, ComparativeContext: []analysis.ComparativeContext{}, SuggestedQuestions: []string{}},
			ProviderName: "mock",
			Model:        "mock",
		}, nil)
	env.OnActivity("PersistAnalysisActivity", mock.Anything, mock.Anything).
		Return(activities.PersistAnalysisOutput{AnalysisID: "an1"}, nil)
	env.OnActivity("TranslateDocumentActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("TranslateAnalysisActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LogLLMCallActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, DocumentProcessInput{
		DocumentID: "doc1", ObjectKey: "uploads/abc.pdf", FileName: "contract.pdf", LLMProviders: 1, CooldownSeconds: 10,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocCompleted, out)

	v, err := env.QueryWorkflow(QueryGetDocumentStatus)
	require.NoError(t, err)
	var status DocumentStatus
	require.NoError(t, v.Get(&status))
	require.Equal(t, "an1", status.AnalysisID)
	require.Equal(t, "done", status.Translations["hi"])
	require.Equal(t, "done", status.Translations["ta"])
	require.Equal(t, "done", status.Translations["te"])
}

func TestDocumentProcessWorkflowNoTextFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractTextOutput{}, errors.New("no extractable text found in PDF"))

	env.ExecuteWorkflow(DocumentProcessWorkflow, DocumentProcessInput{
		DocumentID: "doc1", ObjectKey: "uploads/abc.pdf", FileName: "scan.pdf", LLMProviders: 1, CooldownSeconds: 10,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocFailed, out)
}

func TestDocumentProcessWorkflowAnalysisFailureRecordsFailedRow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentProcessWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractTextOutput{Pages: []models.Page{{PageNumber: 1, Text: "x"}}, FullText: "x", NumPages: 1}, nil)
	env.OnActivity("PersistExtractionActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.AnalyzeDocumentOutput{}, errors.New("api key not valid"))
	env.OnActivity("LogLLMCallActivity", mock.Anything, mock.Anything).Return(nil)

	persistedFailed := false
	env.OnActivity("PersistAnalysisActivity", mock.Anything, mock.MatchedBy(func(in activities.PersistAnalysisInput) bool {
		if in.Status == models.AnalysisFailed {
			persistedFailed = true
		}
		return true
	})).Return(activities.PersistAnalysisOutput{}, nil)

	env.ExecuteWorkflow(DocumentProcessWorkflow, DocumentProcessInput{
		DocumentID: "doc1", ObjectKey: "uploads/abc.pdf", FileName: "contract.pdf", LLMProviders: 1, CooldownSeconds: 10,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.DocFailed, out)
	require.True(t, persistedFailed)
}

func TestSimulationWorkflowReusesExistingSession(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(SimulationWorkflow)
	registerActivityName(env, "CheckExistingSimulationActivity", func(context.Context, activities.CheckExistingSimulationInput) (activities.CheckExistingSimulationOutput, error) {
		return activities.CheckExistingSimulationOutput{}, nil
	})

	env.OnActivity("CheckExistingSimulationActivity", mock.Anything, activities.CheckExistingSimulationInput{DocumentID: "doc1"}).
		Return(activities.CheckExistingSimulationOutput{SessionID: "sess1", Found: true}, nil)

	env.ExecuteWorkflow(SimulationWorkflow, SimulationInput{DocumentID: "doc1", LLMProviders: 1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "sess1", out)

	v, err := env.QueryWorkflow(QueryGetSimulationProgress)
	require.NoError(t, err)
	var progress SimulationProgress
	require.NoError(t, v.Get(&progress))
	require.True(t, progress.Reused)
}

func TestSimulationWorkflowGeneratesAndPersists(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(SimulationWorkflow)
	registerActivityName(env, "CheckExistingSimulationActivity", func(context.Context, activities.CheckExistingSimulationInput) (activities.CheckExistingSimulationOutput, error) {
		return activities.CheckExistingSimulationOutput{}, nil
	})
	registerActivityName(env, "GenerateSimulationActivity", func(context.Context, activities.GenerateSimulationInput) (activities.GenerateSimulationOutput, error) {
		return activities.GenerateSimulationOutput{}, nil
	})
	registerActivityName(env, "PersistSimulationActivity", func(context.Context, activities.PersistSimulationInput) (activities.PersistSimulationOutput, error) {
		return activities.PersistSimulationOutput{}, nil
	})
	registerActivityName(env, "TranslateSimulationActivity", func(context.Context, activities.TranslateSimulationInput) error { return nil })
	registerActivityName(env, "LogLLMCallActivity", func(context.Context, activities.LogLLMCallInput) error { return nil })

	env.OnActivity("CheckExistingSimulationActivity", mock.Anything, mock.Anything).
		Return(activities.CheckExistingSimulationOutput{}, nil)
	env.OnActivity("TranslateSimulationActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("GenerateSimulationActivity", mock.Anything, mock.Anything).
		Return(activities.GenerateSimulationOutput{
			Extraction:   simulation.Extraction{Session: simulation.Session{Title: "sim", Scenario: "normal"}},
			ProviderName: "mock",
			Model:        "mock",
		}, nil)
	env.OnActivity("PersistSimulationActivity", mock.Anything, mock.Anything).
		Return(activities.PersistSimulationOutput{SessionID: "sess2"}, nil)
	env.OnActivity("LogLLMCallActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(SimulationWorkflow, SimulationInput{DocumentID: "doc1", LLMProviders: 1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "sess2", out)
}
