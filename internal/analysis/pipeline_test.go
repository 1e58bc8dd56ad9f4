package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"legisense/internal/providers"
)

// scriptedProvider replays a fixed sequence of responses and records the
// requests it receives.
type scriptedProvider struct {
	responses []string
	errs      []error
	requests  []providers.ChatRequest
}

func (s *scriptedProvider) ChatCompletion(_ context.Context, req providers.ChatRequest) (providers.ChatResponse, providers.ProviderInfo, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	info := providers.ProviderInfo{Name: "scripted", Model: "test"}
	if i < len(s.errs) && s.errs[i] != nil {
		return providers.ChatResponse{}, info, s.errs[i]
	}
	return providers.ChatResponse{Content: s.responses[i]}, info, nil
}

func TestAnalyzerHappyPath(t *testing.T) {
	p := &scriptedProvider{responses: []string{`{"tldrBullets": ["short summary"], "clauses": [], "riskFlags": [], "comparativeContext": [], "suggestedQuestions": []}`}}
	res, info, err := NewAnalyzer(p).Run(context.Background(), []string{"page one"}, map[string]any{"file_name": "a.pdf"})
	require.NoError(t, err)
	require.Equal(t, []string{"short summary"}, res.TLDRBullets)
	require.Equal(t, "scripted", info.Name)
	require.Len(t, p.requests, 1)
	require.InDelta(t, 0.2, p.requests[0].Temperature, 1e-6)
	require.Equal(t, analysisMaxTokens, p.requests[0].MaxTokens)
}

func TestAnalyzerRepairOnMalformedJSON(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		`here is your analysis: {"tldrBullets": [}`,
		`{"tldrBullets": ["repaired"], "clauses": [], "riskFlags": [], "comparativeContext": [], "suggestedQuestions": []}`,
	}}
	res, _, err := NewAnalyzer(p).Run(context.Background(), []string{"text"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"repaired"}, res.TLDRBullets)
	require.Len(t, p.requests, 2)

	repair := p.requests[1]
	require.InDelta(t, 0.0, repair.Temperature, 1e-6)
	require.Len(t, repair.Messages, len(p.requests[0].Messages)+1)
	for _, m := range repair.Messages {
		require.NotEqual(t, providers.RoleAssistant, m.Role)
	}
	last := repair.Messages[len(repair.Messages)-1]
	require.Equal(t, providers.RoleUser, last.Role)
	require.Equal(t, repairUserPrompt, last.Content)
}

func TestAnalyzerDegradesToEmptyAfterFailedRepair(t *testing.T) {
	p := &scriptedProvider{responses: []string{"not json", "still not json"}}
	res, _, err := NewAnalyzer(p).Run(context.Background(), []string{"text"}, nil)
	require.NoError(t, err)
	require.Empty(t, res.TLDRBullets)
	require.Empty(t, res.Clauses)
	require.NotNil(t, res.SuggestedQuestions)
	require.Len(t, p.requests, 2)
}

func TestAnalyzerPropagatesTransportError(t *testing.T) {
	boom := errors.New("rate limit exceeded")
	p := &scriptedProvider{responses: []string{""}, errs: []error{boom}}
	_, _, err := NewAnalyzer(p).Run(context.Background(), []string{"text"}, nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, p.requests, 1)
}

func TestAnalyzerPropagatesRepairTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	p := &scriptedProvider{responses: []string{"not json", ""}, errs: []error{nil, boom}}
	_, _, err := NewAnalyzer(p).Run(context.Background(), []string{"text"}, nil)
	require.ErrorIs(t, err, boom)
}

func TestAnalyzerStripsCodeFence(t *testing.T) {
	p := &scriptedProvider{responses: []string{"```json\n{\"tldrBullets\": [\"fenced\"], \"clauses\": [], \"riskFlags\": [], \"comparativeContext\": [], \"suggestedQuestions\": []}\n```"}}
	res, _, err := NewAnalyzer(p).Run(context.Background(), []string{"text"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"fenced"}, res.TLDRBullets)
	require.Len(t, p.requests, 1)
}
