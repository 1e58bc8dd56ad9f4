package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"legisense/internal/analysis"
	"legisense/internal/simulation"
)

func TestGoogleTranslatorParsesSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gtx", r.URL.Query().Get("client"))
		require.Equal(t, "en", r.URL.Query().Get("sl"))
		require.Equal(t, "hi", r.URL.Query().Get("tl"))
		require.Equal(t, "t", r.URL.Query().Get("dt"))
		require.Equal(t, "hello world", r.URL.Query().Get("q"))
		w.Write([]byte(`[[["नमस्ते ","hello ",null],["दुनिया","world",null]],null,"en"]`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslatorWithBaseURL(srv.URL, srv.Client())
	got, err := tr.Translate(context.Background(), "hello world", "en", "hi")
	require.NoError(t, err)
	require.Equal(t, "नमस्ते दुनिया", got)
}

func TestGoogleTranslatorFailureReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tr := NewGoogleTranslatorWithBaseURL(srv.URL, srv.Client())
	got, err := tr.Translate(context.Background(), "hello", "en", "ta")
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestGoogleTranslatorSkipsBlankAndSameLanguage(t *testing.T) {
	tr := NewGoogleTranslatorWithBaseURL("http://127.0.0.1:1", nil)
	got, err := tr.Translate(context.Background(), "  ", "en", "hi")
	require.NoError(t, err)
	require.Equal(t, "  ", got)

	got, err = tr.Translate(context.Background(), "same", "en", "en")
	require.NoError(t, err)
	require.Equal(t, "same", got)
}

// upperTranslator marks translated strings so walkers can be asserted on.
type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return "[t]" + text, nil
}

func TestTranslateAnalysisKeepsTagsCanonical(t *testing.T) {
	res := analysis.Result{
		TLDRBullets: []string{"summary"},
		Clauses: []analysis.Clause{
			{Category: "Payment Terms", OriginalSnippet: "net 30", Explanation: "pay in 30 days", Risk: "low"},
		},
		RiskFlags:          []analysis.RiskFlag{{Text: "penalty", Level: "high", Why: "uncapped"}},
		ComparativeContext: []analysis.ComparativeContext{{Label: "Notice", Standard: "30d", Contract: "7d", Assessment: "short"}},
		SuggestedQuestions: []string{"why?"},
	}
	out, err := TranslateAnalysis(context.Background(), upperTranslator{}, res, "en", "hi")
	require.NoError(t, err)
	require.Equal(t, []string{"[t]summary"}, out.TLDRBullets)
	require.Equal(t, "Payment Terms", out.Clauses[0].Category)
	require.Equal(t, "low", out.Clauses[0].Risk)
	require.Equal(t, "[t]net 30", out.Clauses[0].OriginalSnippet)
	require.Equal(t, "[t]pay in 30 days", out.Clauses[0].Explanation)
	require.Equal(t, "[t]penalty", out.RiskFlags[0].Text)
	require.Equal(t, "high", out.RiskFlags[0].Level)
	require.Equal(t, "[t]uncapped", out.RiskFlags[0].Why)
	require.Equal(t, "[t]7d", out.ComparativeContext[0].Contract)
	require.Equal(t, []string{"[t]why?"}, out.SuggestedQuestions)
}

func TestTranslateExtractionKeepsEnumsAndNumbers(t *testing.T) {
	ex := simulation.Extraction{
		Session:         simulation.Session{Title: "sim", Scenario: "normal", Parameters: map[string]any{"source": "llm"}},
		Timeline:        []simulation.TimelineNode{{Order: 4, Title: "start", Description: "d", DetailedDescription: "dd", Risks: []string{"slip"}}},
		PenaltyForecast: []simulation.PenaltyForecastRow{{Label: "m1", TotalAmount: 42}},
		ExitComparisons: []simulation.ExitComparison{{Label: "exit", RiskLevel: "critical"}},
		Narratives:      []simulation.Narrative{{Title: "n", Severity: "medium", KeyPoints: []string{"kp"}}},
		LongTerm:        []simulation.LongTermPoint{{Label: "y1", Index: 3, Value: 7}},
		RiskAlerts:      []simulation.RiskAlert{{Level: "warning", Message: "careful"}},
	}
	out, err := TranslateExtraction(context.Background(), upperTranslator{}, ex, "en", "te")
	require.NoError(t, err)
	require.Equal(t, "[t]sim", out.Session.Title)
	require.Equal(t, "normal", out.Session.Scenario)
	require.Equal(t, "llm", out.Session.Parameters["source"])
	require.Equal(t, "[t]start", out.Timeline[0].Title)
	require.Equal(t, 4, out.Timeline[0].Order)
	require.Equal(t, []string{"[t]slip"}, out.Timeline[0].Risks)
	require.Equal(t, []string{"[t]kp"}, out.Narratives[0].KeyPoints)
	require.InDelta(t, 42, out.PenaltyForecast[0].TotalAmount, 1e-9)
	require.Equal(t, "critical", out.ExitComparisons[0].RiskLevel)
	require.Equal(t, "medium", out.Narratives[0].Severity)
	require.Equal(t, 3, out.LongTerm[0].Index)
	require.Equal(t, "warning", out.RiskAlerts[0].Level)
	require.Equal(t, "[t]careful", out.RiskAlerts[0].Message)
}
