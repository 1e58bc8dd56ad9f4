package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"legisense/internal/providers"
	"legisense/internal/util"
)

const analysisSystemPrompt = "You are a contracts analysis assistant. Always reply with STRICT JSON only, no prose."

const repairUserPrompt = "Return ONLY valid JSON per previous schema. If content had extra text, remove it and output minimal valid JSON."

const analysisTaskTemplate = `Analyze the contract text and return STRICT JSON with exactly these keys:
{
  "tldrBullets": [up to %d short plain-language bullets summarizing the document],
  "clauses": [{"category": one of [%s], "originalSnippet": string, "explanation": string, "risk": "low"|"medium"|"high", "icon": optional string}],
  "riskFlags": [{"text": string, "level": "low"|"medium"|"high", "why": string}],
  "comparativeContext": [{"label": string, "standard": string, "contract": string, "assessment": string}],
  "suggestedQuestions": [up to %d questions a layperson should ask before signing]
}
Use only information present in the text. No markdown, no commentary.`

// BuildAnalysisMessages assembles the chat turn for the analysis call. Long
// documents are middle-truncated so head and tail clauses both survive.
func BuildAnalysisMessages(pages []string, meta map[string]any) []providers.ChatMessage {
	joined := util.TruncateMiddle(strings.Join(pages, "\n\n"), AnalysisTextCharBudget)
	metaJSON, _ := json.Marshal(meta)

	cats := make([]string, 0, len(ValidClauseCategories))
	for c := range ValidClauseCategories {
		cats = append(cats, `"`+c+`"`)
	}
	sort.Strings(cats)
	task := fmt.Sprintf(analysisTaskTemplate, MaxTLDRBullets, strings.Join(cats, ", "), MaxSuggestedQuestions)

	user := "Meta: " + string(metaJSON) + "\n\nText:\n" + joined + "\n\nTask:\n" + task
	return []providers.ChatMessage{
		{Role: providers.RoleSystem, Content: analysisSystemPrompt},
		{Role: providers.RoleUser, Content: user},
	}
}
