package simulation

import (
	"encoding/json"
	"strings"

	"legisense/internal/providers"
	"legisense/internal/util"
)

const SimulationTextCharBudget = 4000

const simulationSystemPrompt = "You are a legal document analysis AI that generates realistic simulation data based on document content. Always return valid JSON."

const simulationTask = `Generate a what-if simulation for this contract as STRICT JSON with exactly these keys:
{
  "session": {"title": string, "scenario": "normal"|"missed_payment"|"early_termination", "jurisdiction": string, "jurisdiction_note": string},
  "timeline": [{"order": integer, "title": string, "description": string, "detailed_description": string, "risks": [string]}],
  "penalty_forecast": [{"label": string, "base_amount": number, "penalty_amount": number, "interest_amount": number, "total_amount": number}],
  "exit_comparisons": [{"label": string, "penalty_text": string, "risk_level": "low"|"medium"|"high"|"critical", "benefits_lost": string}],
  "narratives": [{"title": string, "subtitle": string, "severity": "low"|"medium"|"high"|"critical", "narrative": string, "key_points": [string], "financial_impact": [string]}],
  "long_term": [{"label": string, "description": string, "index": integer, "value": number}],
  "risk_alerts": [{"level": "info"|"warning"|"high"|"critical", "message": string}]
}
Ground every entry in the contract text. Amounts are plain numbers without currency symbols. No markdown, no commentary.`

// BuildSimulationMessages assembles the chat turn for the simulation call.
func BuildSimulationMessages(pages []string, meta map[string]any) []providers.ChatMessage {
	joined := util.TruncateMiddle(strings.Join(pages, "\n\n"), SimulationTextCharBudget)
	metaJSON, _ := json.Marshal(meta)
	user := "Meta: " + string(metaJSON) + "\n\nText:\n" + joined + "\n\nTask:\n" + simulationTask
	return []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: simulationSystemPrompt},
		{Role: providers.RoleUser, Content: user},
	}
}
