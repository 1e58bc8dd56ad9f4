package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const geminiURLTemplate = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiClient is a minimal REST client for Gemini's generateContent
// endpoint, used by the chat proxy. Gemini is not part of the analysis
// pipeline provider pool.
type GeminiClient struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiClient() *GeminiClient {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{
		apiKey: os.Getenv("GOOGLE_GEMINI_API"),
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GOOGLE_GEMINI_API key is not set")
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	if systemInstruction != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": systemInstruction}},
		}
	}
	body, _ := json.Marshal(payload)
	url := fmt.Sprintf(geminiURLTemplate, g.model)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini error %d: %s", resp.StatusCode, string(raw))
	}
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	texts := make([]string, 0, len(parsed.Candidates[0].Content.Parts))
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, ""), nil
}
