package providers

import "context"

// MockProvider returns canned strict-JSON responses so the pipelines can run
// end to end without API keys. The payload is keyed on the request Operation.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

const mockAnalysisJSON = `{
  "tldrBullets": ["Fixed-term services agreement with monthly invoicing.", "Either party may terminate with 30 days written notice."],
  "clauses": [
    {"category": "Payment Terms", "originalSnippet": "Invoices are payable within thirty (30) days of receipt.", "explanation": "Invoices are due net 30 from receipt.", "risk": "low"},
    {"category": "Termination / Exit", "originalSnippet": "Early termination incurs a fee equal to two monthly payments.", "explanation": "Leaving early costs twice the monthly fee.", "risk": "high"}
  ],
  "riskFlags": [
    {"text": "early termination penalty", "level": "high", "why": "Penalty equals twice the monthly fee."}
  ],
  "comparativeContext": [
    {"label": "Notice period", "standard": "30 days", "contract": "30 days", "assessment": "in line with market"}
  ],
  "suggestedQuestions": ["Can the early termination penalty be capped?"]
}`

const mockSimulationJSON = `{
  "session": {"title": "Contract lifecycle simulation", "scenario": "normal", "jurisdiction": "", "jurisdiction_note": ""},
  "timeline": [
    {"order": 1, "title": "Contract start", "description": "Agreement becomes effective.", "detailed_description": "Both parties sign and the initial term begins.", "risks": []},
    {"order": 2, "title": "First invoice due", "description": "Net 30 payment window opens.", "detailed_description": "Late payment beyond the window accrues interest.", "risks": ["late payment interest"]}
  ],
  "penalty_forecast": [
    {"label": "Month 1", "base_amount": 0, "penalty_amount": 0, "interest_amount": 0, "total_amount": 0}
  ],
  "exit_comparisons": [
    {"label": "Exit at month 3", "penalty_text": "2x monthly fee", "risk_level": "high", "benefits_lost": "Onboarding credits forfeited"}
  ],
  "narratives": [
    {"title": "On-time performance", "subtitle": "All obligations met", "severity": "low", "narrative": "Payments are made on schedule and the contract renews.", "key_points": ["No penalties accrue"], "financial_impact": ["Total spend matches the agreed schedule"]}
  ],
  "long_term": [
    {"label": "Year 1", "description": "Cumulative spend", "index": 1, "value": 12000}
  ],
  "risk_alerts": [
    {"level": "warning", "message": "Early termination carries a 2x monthly fee penalty."}
  ]
}`

func (m *MockProvider) ChatCompletion(_ context.Context, req ChatRequest) (ChatResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "mock", Model: "mock"}
	switch req.Operation {
	case "simulation":
		return ChatResponse{Content: mockSimulationJSON}, info, nil
	default:
		return ChatResponse{Content: mockAnalysisJSON}, info, nil
	}
}
