package engine

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Compile-time check that GeminiEngine implements Engine.
var _ Engine = (*GeminiEngine)(nil)

// GeminiEngine talks to the Gemini API via the official SDK.
type GeminiEngine struct {
	client *genai.Client
}

// NewGemini creates a GeminiEngine authenticated with the given API key.
func NewGemini(ctx context.Context, apiKey string) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiEngine{client: client}, nil
}

// Generate sends the prompt to the given model and returns the response text.
func (g *GeminiEngine) Generate(ctx context.Context, model string, prompt Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(prompt.Temperature),
	}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt.User), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("generate content: empty response from %s", model)
	}
	return text, nil
}

// Embed returns the embedding vector for the given text.
func (g *GeminiEngine) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embed content: empty embedding from %s", model)
	}
	return resp.Embeddings[0].Values, nil
}
