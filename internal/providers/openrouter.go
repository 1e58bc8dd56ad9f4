package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible chat completions
// endpoint when a key is configured.
type OpenRouterProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *openai.Client
}

func NewOpenRouterProvider(keyName string) *OpenRouterProvider {
	apiKey := resolveOpenRouterKey(keyName)
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	// Generations on free-tier models can take well over a minute.
	cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "deepseek/deepseek-chat-v3.1:free"
	}
	return &OpenRouterProvider{
		keyName: keyName,
		apiKey:  apiKey,
		model:   model,
		client:  openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenRouterProvider) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openrouter", Model: o.model, Key: o.keyName}
	if o.apiKey == "" {
		return ChatResponse{}, info, fmt.Errorf("openrouter key missing for alias %q", o.keyName)
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	chatReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONObject {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return ChatResponse{}, info, fmt.Errorf("openrouter chat completion failed: %w", err)
	}
	return ChatResponse{Content: firstChoiceContent(resp)}, info, nil
}

// firstChoiceContent extracts the assistant content from the first choice of
// the provider envelope. A missing choice or empty content yields "", which
// callers must treat as "no usable output".
func firstChoiceContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

func resolveOpenRouterKey(alias string) string {
	if alias != "" {
		k := os.Getenv("LEGISENSE_OPENROUTER_KEY_" + strings.ToUpper(alias))
		if k != "" {
			return k
		}
	}
	return os.Getenv("OPENROUTER_API_KEY")
}
