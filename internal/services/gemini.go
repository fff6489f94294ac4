package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/admission-tracker/internal/logger"
)

const (
	embeddingModel     = "text-embedding-004"
	maxEmbeddingChars  = 40000
	maxOutputTokens    = 4096
	retryBackoffPerTry = 500 * time.Millisecond
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
	log       logger.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model string, log logger.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:    client,
		modelName: model,
		log:       log.WithFields(map[string]interface{}{"component": "gemini", "model": model}),
	}, nil
}

// GenerateEmbedding embeds text for rubric retrieval.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbeddingChars)

	result, err := g.client.Models.EmbedContent(ctx, embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateJSON asks the model for a JSON document and returns the raw text.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response (%d candidates)", len(resp.Candidates))
	}

	g.log.Debug("gemini response received", map[string]interface{}{
		"prompt_chars":   len(prompt),
		"response_chars": len(text),
	})
	return text, nil
}

func (g *geminiService) GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateJSON(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}
		g.log.WithError(err).Warn("gemini attempt failed, retrying", map[string]interface{}{"attempt": attempt})

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoffPerTry):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
