package simulation

// Scenario values accepted for a simulation session.
var ValidScenarios = map[string]struct{}{
	"normal":            {},
	"missed_payment":    {},
	"early_termination": {},
}

const DefaultScenario = "normal"

// Severity values used by exit comparisons and narrative outcomes.
var ValidSeverities = map[string]struct{}{
	"low":      {},
	"medium":   {},
	"high":     {},
	"critical": {},
}

// Alert levels for risk alerts.
var ValidAlertLevels = map[string]struct{}{
	"info":     {},
	"warning":  {},
	"high":     {},
	"critical": {},
}

type Session struct {
	Title            string         `json:"title"`
	Scenario         string         `json:"scenario"`
	Jurisdiction     string         `json:"jurisdiction"`
	JurisdictionNote string         `json:"jurisdiction_note"`
	Parameters       map[string]any `json:"parameters"`
}

type TimelineNode struct {
	Order               int      `json:"order"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	DetailedDescription string   `json:"detailed_description"`
	Risks               []string `json:"risks"`
}

type PenaltyForecastRow struct {
	Label          string  `json:"label"`
	BaseAmount     float64 `json:"base_amount"`
	PenaltyAmount  float64 `json:"penalty_amount"`
	InterestAmount float64 `json:"interest_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

type ExitComparison struct {
	Label        string `json:"label"`
	PenaltyText  string `json:"penalty_text"`
	RiskLevel    string `json:"risk_level"`
	BenefitsLost string `json:"benefits_lost"`
}

type Narrative struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	Severity        string   `json:"severity"`
	Narrative       string   `json:"narrative"`
	KeyPoints       []string `json:"key_points"`
	FinancialImpact []string `json:"financial_impact"`
}

type LongTermPoint struct {
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Index       int     `json:"index"`
	Value       float64 `json:"value"`
}

type RiskAlert struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Extraction is the normalized simulation payload produced from one model
// call, ready for persistence as a session plus its child rows.
type Extraction struct {
	Session         Session              `json:"session"`
	Timeline        []TimelineNode       `json:"timeline"`
	PenaltyForecast []PenaltyForecastRow `json:"penalty_forecast"`
	ExitComparisons []ExitComparison     `json:"exit_comparisons"`
	Narratives      []Narrative          `json:"narratives"`
	LongTerm        []LongTermPoint      `json:"long_term"`
	RiskAlerts      []RiskAlert          `json:"risk_alerts"`
}
