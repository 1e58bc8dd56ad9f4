package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"legisense/internal/providers"
)

const (
	simulationTemperature = 0.2
	simulationMaxTokens   = 4000
)

// OnFailure selects how the extractor reacts when the model call, JSON
// decoding, or payload validation fails.
type OnFailure int

const (
	// FailRaise returns the error to the caller.
	FailRaise OnFailure = iota
	// FailFallback substitutes a minimal placeholder session tagged with the
	// failure class so the document still gets a browsable simulation.
	FailFallback
)

// Extractor turns contract text into a simulation Extraction via one model
// call. There is no repair retry; a malformed response degrades per the
// OnFailure policy.
type Extractor struct {
	Provider  providers.ChatProvider
	OnFailure OnFailure
}

func NewExtractor(p providers.ChatProvider, policy OnFailure) *Extractor {
	return &Extractor{Provider: p, OnFailure: policy}
}

func (e *Extractor) Run(ctx context.Context, pages []string, meta map[string]any) (Extraction, providers.ProviderInfo, error) {
	resp, info, err := e.Provider.ChatCompletion(ctx, providers.ChatRequest{
		Operation:   "simulation",
		Messages:    BuildSimulationMessages(pages, meta),
		Temperature: simulationTemperature,
		MaxTokens:   simulationMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		if e.OnFailure == FailFallback {
			log.Printf("simulation call failed, using fallback session: %v", err)
			return fallbackExtraction("Auto simulation (fallback)", "fallback"), info, nil
		}
		return Extraction{}, info, fmt.Errorf("simulation call: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(providers.StripCodeFence(resp.Content)), &raw); err != nil {
		if e.OnFailure == FailFallback {
			log.Printf("simulation JSON decode failed, using fallback session: %v", err)
			return fallbackExtraction("Auto simulation (JSON parsing failed)", "json_parse_fallback"), info, nil
		}
		return Extraction{}, info, fmt.Errorf("decode simulation JSON: %w", err)
	}
	ex, err := FromRaw(raw)
	if err != nil {
		if e.OnFailure == FailFallback {
			log.Printf("simulation payload invalid, using fallback session: %v", err)
			return fallbackExtraction("Auto simulation (validation failed)", "validation_fallback"), info, nil
		}
		return Extraction{}, info, err
	}
	return ex, info, nil
}

// FromRaw validates and normalizes a decoded simulation payload. The only
// hard requirement is a session object; everything else degrades to empty
// sections or default enum values.
func FromRaw(raw map[string]any) (Extraction, error) {
	if _, ok := raw["session"].(map[string]any); !ok {
		return Extraction{}, fmt.Errorf("simulation payload missing session object")
	}
	return normalizeExtraction(raw), nil
}

func fallbackExtraction(title, source string) Extraction {
	ex := emptyExtraction()
	ex.Session = Session{
		Title:      title,
		Scenario:   DefaultScenario,
		Parameters: map[string]any{"source": source},
	}
	return ex
}

func emptyExtraction() Extraction {
	return Extraction{
		Timeline:        []TimelineNode{},
		PenaltyForecast: []PenaltyForecastRow{},
		ExitComparisons: []ExitComparison{},
		Narratives:      []Narrative{},
		LongTerm:        []LongTermPoint{},
		RiskAlerts:      []RiskAlert{},
	}
}

func normalizeExtraction(raw map[string]any) Extraction {
	ex := emptyExtraction()
	sess, _ := raw["session"].(map[string]any)
	ex.Session = Session{
		Title:            asString(sess["title"]),
		Scenario:         normalizeScenario(sess["scenario"]),
		Jurisdiction:     asString(sess["jurisdiction"]),
		JurisdictionNote: asString(sess["jurisdiction_note"]),
		Parameters:       map[string]any{"source": "llm"},
	}
	for _, m := range objectList(raw["timeline"]) {
		ex.Timeline = append(ex.Timeline, TimelineNode{
			Order:               int(asFloat(m["order"])),
			Title:               asString(m["title"]),
			Description:         asString(m["description"]),
			DetailedDescription: asString(m["detailed_description"]),
			Risks:               stringList(m["risks"]),
		})
	}
	for _, m := range objectList(raw["penalty_forecast"]) {
		ex.PenaltyForecast = append(ex.PenaltyForecast, PenaltyForecastRow{
			Label:          asString(m["label"]),
			BaseAmount:     asFloat(m["base_amount"]),
			PenaltyAmount:  asFloat(m["penalty_amount"]),
			InterestAmount: asFloat(m["interest_amount"]),
			TotalAmount:    asFloat(m["total_amount"]),
		})
	}
	for _, m := range objectList(raw["exit_comparisons"]) {
		ex.ExitComparisons = append(ex.ExitComparisons, ExitComparison{
			Label:        asString(m["label"]),
			PenaltyText:  asString(m["penalty_text"]),
			RiskLevel:    normalizeEnum(m["risk_level"], ValidSeverities, "low"),
			BenefitsLost: asString(m["benefits_lost"]),
		})
	}
	for _, m := range objectList(raw["narratives"]) {
		ex.Narratives = append(ex.Narratives, Narrative{
			Title:           asString(m["title"]),
			Subtitle:        asString(m["subtitle"]),
			Severity:        normalizeEnum(m["severity"], ValidSeverities, "low"),
			Narrative:       asString(m["narrative"]),
			KeyPoints:       stringList(m["key_points"]),
			FinancialImpact: stringList(m["financial_impact"]),
		})
	}
	for _, m := range objectList(raw["long_term"]) {
		ex.LongTerm = append(ex.LongTerm, LongTermPoint{
			Label:       asString(m["label"]),
			Description: asString(m["description"]),
			Index:       int(asFloat(m["index"])),
			Value:       asFloat(m["value"]),
		})
	}
	for _, m := range objectList(raw["risk_alerts"]) {
		ex.RiskAlerts = append(ex.RiskAlerts, RiskAlert{
			Level:   normalizeEnum(m["level"], ValidAlertLevels, "info"),
			Message: asString(m["message"]),
		})
	}
	return ex
}

func normalizeScenario(v any) string {
	s := strings.ToLower(strings.TrimSpace(asString(v)))
	if _, ok := ValidScenarios[s]; !ok {
		return DefaultScenario
	}
	return s
}

func normalizeEnum(v any, valid map[string]struct{}, def string) string {
	s := strings.ToLower(strings.TrimSpace(asString(v)))
	if _, ok := valid[s]; !ok {
		return def
	}
	return s
}

func stringList(v any) []string {
	items, ok := v.([]any)
	out := []string{}
	if !ok {
		return out
	}
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func objectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// asString stringifies the scalars JSON decoding can produce. Numbers and
// booleans come back in their literal form; anything else is empty.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
