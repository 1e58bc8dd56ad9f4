package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Translator translates a single string between languages. Implementations
// must be best-effort: returning the original text on failure is acceptable
// for the free web endpoint.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

const defaultGoogleBaseURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator uses the unofficial web translate endpoint. It degrades
// gracefully: any transport or decode failure returns the original text.
type GoogleTranslator struct {
	baseURL string
	client  *http.Client
}

func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		baseURL: defaultGoogleBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGoogleTranslatorWithBaseURL is used by tests to point at a local server.
func NewGoogleTranslatorWithBaseURL(baseURL string, client *http.Client) *GoogleTranslator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleTranslator{baseURL: baseURL, client: client}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" || source == target {
		return text, nil
	}
	translated, err := g.translateOnce(ctx, text, source, target)
	if err != nil {
		log.Printf("translate %s->%s failed, keeping original text: %v", source, target, err)
		return text, nil
	}
	return translated, nil
}

func (g *GoogleTranslator) translateOnce(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// Response shape is a nested array: [[["translated","original",...],...],...]
	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}
	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate response had no text segments")
	}
	return b.String(), nil
}
