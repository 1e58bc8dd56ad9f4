package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"legisense/internal/providers"
)

const (
	analysisTemperature = 0.2
	analysisMaxTokens   = 900
	repairTemperature   = 0.0
)

// Analyzer runs the contract analysis call against a chat provider, with a
// single repair attempt when the model returns malformed JSON.
type Analyzer struct {
	Provider providers.ChatProvider
}

func NewAnalyzer(p providers.ChatProvider) *Analyzer {
	return &Analyzer{Provider: p}
}

// Run performs the analysis. Transport failures propagate to the caller so
// the surrounding retry machinery can classify them. A JSON decode failure
// triggers one repair call at temperature zero; if that also fails to decode,
// the result degrades to an empty analysis rather than an error.
func (a *Analyzer) Run(ctx context.Context, pages []string, meta map[string]any) (Result, providers.ProviderInfo, error) {
	messages := BuildAnalysisMessages(pages, meta)
	resp, info, err := a.Provider.ChatCompletion(ctx, providers.ChatRequest{
		Operation:   "analysis",
		Messages:    messages,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return Result{}, info, fmt.Errorf("analysis call: %w", err)
	}

	raw, decodeErr := decodeStrictJSON(resp.Content)
	if decodeErr == nil {
		return Normalize(raw), info, nil
	}

	log.Printf("analysis JSON decode failed, attempting repair: %v", decodeErr)
	// The repair turn resends the original prompt with a corrective
	// instruction; the malformed reply itself is not echoed back.
	repairMessages := append(append([]providers.ChatMessage{}, messages...),
		providers.ChatMessage{Role: providers.RoleUser, Content: repairUserPrompt},
	)
	resp, info, err = a.Provider.ChatCompletion(ctx, providers.ChatRequest{
		Operation:   "analysis",
		Messages:    repairMessages,
		Temperature: repairTemperature,
		MaxTokens:   analysisMaxTokens,
		JSONObject:  true,
	})
	if err != nil {
		return Result{}, info, fmt.Errorf("analysis repair call: %w", err)
	}
	raw, decodeErr = decodeStrictJSON(resp.Content)
	if decodeErr != nil {
		log.Printf("analysis repair still malformed, degrading to empty result: %v", decodeErr)
		return Normalize(nil), info, nil
	}
	return Normalize(raw), info, nil
}

func decodeStrictJSON(content string) (any, error) {
	var raw any
	if err := json.Unmarshal([]byte(providers.StripCodeFence(content)), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
