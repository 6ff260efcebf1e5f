package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ListModels returns the models offered by the completion endpoint, sorted by
// ID. OpenRouter serves an OpenAI-compatible /models listing, so the openai-go
// SDK is pointed at it.
//
// A missing key fails before any request, so the SDK never picks up
// OPENAI_API_KEY from the environment.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if c.apiKey == "" {
		return nil, &CompletionError{
			Kind:    ErrConfiguration,
			Message: "OpenRouter API key is not configured. Please set OPENROUTER_API_KEY or add openrouter.api_key to your config.",
		}
	}
	opts := []option.RequestOption{
		option.WithBaseURL(c.baseURL + "/"),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
		option.WithAPIKey(c.apiKey),
	}
	for key, value := range c.headers {
		if value != "" {
			opts = append(opts, option.WithHeader(key, value))
		}
	}
	client := openai.NewClient(opts...)

	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, ModelInfo{
			ID:      m.ID,
			Created: m.Created,
			OwnedBy: m.OwnedBy,
		})
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})
	return models, nil
}

// FilterModels keeps the models whose ID contains every space-separated term.
func FilterModels(models []ModelInfo, query string) []ModelInfo {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return models
	}
	var out []ModelInfo
	for _, m := range models {
		id := strings.ToLower(m.ID)
		match := true
		for _, term := range terms {
			if !strings.Contains(id, term) {
				match = false
				break
			}
		}
		if match {
			out = append(out, m)
		}
	}
	return out
}
