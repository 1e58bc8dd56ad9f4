package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"legisense/internal/providers"
)

type stubProvider struct {
	content string
	err     error
	last    providers.ChatRequest
}

func (s *stubProvider) ChatCompletion(_ context.Context, req providers.ChatRequest) (providers.ChatResponse, providers.ProviderInfo, error) {
	s.last = req
	info := providers.ProviderInfo{Name: "stub", Model: "test"}
	if s.err != nil {
		return providers.ChatResponse{}, info, s.err
	}
	return providers.ChatResponse{Content: s.content}, info, nil
}

const validPayload = `{
  "session": {"title": "Missed payment walk-through", "scenario": "MISSED_PAYMENT", "jurisdiction": "India", "jurisdiction_note": "Karnataka"},
  "timeline": [{"order": 2, "title": "Day 0", "description": "Payment missed", "detailed_description": "Grace period begins", "risks": ["late fee", 9, ""]}],
  "penalty_forecast": [{"label": "Month 1", "base_amount": 1000, "penalty_amount": "150.5", "interest_amount": 10, "total_amount": 1160.5}],
  "exit_comparisons": [{"label": "Exit now", "penalty_text": "2x fee", "risk_level": "CRITICAL", "benefits_lost": "deposit"}],
  "narratives": [{"title": "Worst case", "subtitle": "Escalation", "severity": "bogus", "narrative": "Interest compounds.", "key_points": ["grace period is 5 days"], "financial_impact": ["fees compound monthly"]}],
  "long_term": [{"label": "Y1", "description": "spend", "index": 1, "value": 12000}],
  "risk_alerts": [{"level": "warning", "message": "Late fees accrue daily."}, 17]
}`

func TestExtractorNormalizesValidPayload(t *testing.T) {
	p := &stubProvider{content: validPayload}
	ex, info, err := NewExtractor(p, FailRaise).Run(context.Background(), []string{"contract text"}, nil)
	require.NoError(t, err)
	require.Equal(t, "stub", info.Name)

	require.Equal(t, "Missed payment walk-through", ex.Session.Title)
	require.Equal(t, "missed_payment", ex.Session.Scenario)
	require.Equal(t, "llm", ex.Session.Parameters["source"])

	require.Equal(t, "India", ex.Session.Jurisdiction)
	require.Len(t, ex.Timeline, 1)
	require.Equal(t, 2, ex.Timeline[0].Order)
	// scalar risks are stringified, blanks dropped
	require.Equal(t, []string{"late fee", "9"}, ex.Timeline[0].Risks)
	require.Equal(t, []string{"grace period is 5 days"}, ex.Narratives[0].KeyPoints)
	require.Equal(t, []string{"fees compound monthly"}, ex.Narratives[0].FinancialImpact)
	require.Len(t, ex.PenaltyForecast, 1)
	require.InDelta(t, 150.5, ex.PenaltyForecast[0].PenaltyAmount, 1e-6)
	require.Equal(t, "critical", ex.ExitComparisons[0].RiskLevel)
	require.Equal(t, "low", ex.Narratives[0].Severity)
	require.Equal(t, 1, ex.LongTerm[0].Index)
	// non-object entries are dropped
	require.Len(t, ex.RiskAlerts, 1)

	require.InDelta(t, 0.2, p.last.Temperature, 1e-6)
	require.Equal(t, simulationMaxTokens, p.last.MaxTokens)
}

func TestExtractorRaisesOnTransportError(t *testing.T) {
	boom := errors.New("upstream unavailable")
	p := &stubProvider{err: boom}
	_, _, err := NewExtractor(p, FailRaise).Run(context.Background(), []string{"x"}, nil)
	require.ErrorIs(t, err, boom)
}

func TestExtractorFallbackOnTransportError(t *testing.T) {
	p := &stubProvider{err: errors.New("upstream unavailable")}
	ex, _, err := NewExtractor(p, FailFallback).Run(context.Background(), []string{"x"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Auto simulation (fallback)", ex.Session.Title)
	require.Equal(t, "normal", ex.Session.Scenario)
	require.Equal(t, "fallback", ex.Session.Parameters["source"])
	require.NotNil(t, ex.Timeline)
	require.Empty(t, ex.Timeline)
}

func TestExtractorFallbackOnMalformedJSON(t *testing.T) {
	p := &stubProvider{content: "sure, here is the simulation you asked for"}
	ex, _, err := NewExtractor(p, FailFallback).Run(context.Background(), []string{"x"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Auto simulation (JSON parsing failed)", ex.Session.Title)
	require.Equal(t, "json_parse_fallback", ex.Session.Parameters["source"])
}

func TestExtractorFallbackOnMissingSession(t *testing.T) {
	p := &stubProvider{content: `{"timeline": []}`}
	ex, _, err := NewExtractor(p, FailFallback).Run(context.Background(), []string{"x"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Auto simulation (validation failed)", ex.Session.Title)
	require.Equal(t, "validation_fallback", ex.Session.Parameters["source"])
}

func TestExtractorRaisesOnMissingSession(t *testing.T) {
	p := &stubProvider{content: `{"timeline": []}`}
	_, _, err := NewExtractor(p, FailRaise).Run(context.Background(), []string{"x"}, nil)
	require.Error(t, err)
}
