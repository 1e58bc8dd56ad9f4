package analysis

// Clause categories recognized by the normalizer. Unrecognized non-empty
// categories from the model are passed through unchanged.
var ValidClauseCategories = map[string]struct{}{
	"Payment Terms":       {},
	"Termination / Exit":  {},
	"Liability & Damages": {},
	"Confidentiality":     {},
	"Dispute Resolution":  {},
	"Renewal / Extension": {},
}

const DefaultClauseCategory = "Payment Terms"

var ValidRiskLevels = map[string]struct{}{
	"low":    {},
	"medium": {},
	"high":   {},
}

const DefaultRiskLevel = "low"

const (
	MaxTLDRBullets         = 5
	MaxSuggestedQuestions  = 8
	AnalysisTextCharBudget = 6000
)

// Clause is one tagged contract clause in the normalized analysis output.
type Clause struct {
	Category        string  `json:"category"`
	OriginalSnippet string  `json:"originalSnippet"`
	Explanation     string  `json:"explanation"`
	Risk            string  `json:"risk"`
	Icon            *string `json:"icon,omitempty"`
}

// RiskFlag flags a specific passage the model considered hazardous.
type RiskFlag struct {
	Text  string `json:"text"`
	Level string `json:"level"`
	Why   string `json:"why"`
}

// ComparativeContext contrasts one contract term against a market-standard
// counterpart.
type ComparativeContext struct {
	Label      string `json:"label"`
	Standard   string `json:"standard"`
	Contract   string `json:"contract"`
	Assessment string `json:"assessment"`
}

// Result is the normalized analysis document persisted per contract. All
// slices are non-nil so the JSON shape is stable for API consumers.
type Result struct {
	TLDRBullets        []string             `json:"tldrBullets"`
	Clauses            []Clause             `json:"clauses"`
	RiskFlags          []RiskFlag           `json:"riskFlags"`
	ComparativeContext []ComparativeContext `json:"comparativeContext"`
	SuggestedQuestions []string             `json:"suggestedQuestions"`
}
