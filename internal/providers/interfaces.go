package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Operation   string        `json:"operation"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	// JSONObject asks the provider for a JSON-object response format where
	// the backing API supports it.
	JSONObject bool `json:"json_object"`
}

type ChatResponse struct {
	Content string `json:"content"`
}

type ChatProvider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, ProviderInfo, error)
}
