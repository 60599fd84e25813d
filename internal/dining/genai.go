package dining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTopN        = 10
	defaultTemperature = 0.7
)

// contentGenerator is the part of *genai.Models in use.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GenAIRecommender struct {
	models contentGenerator
	model  string
	topN   int
}

func NewGenAIRecommender(ctx context.Context, apiKey, model string) (*GenAIRecommender, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenAIRecommender(client.Models, model), nil
}

func newGenAIRecommender(models contentGenerator, model string) *GenAIRecommender {
	if model == "" {
		model = DefaultModel
	}
	return &GenAIRecommender{
		models: models,
		model:  model,
		topN:   DefaultTopN,
	}
}

// Recommend asks the model for the best meals on the menus for goal and
// returns its answer as-is.
func (r *GenAIRecommender) Recommend(ctx context.Context, goal string, menus Menus) (string, error) {
	prompt, err := BuildPrompt(goal, menus, r.topN)
	if err != nil {
		return "", err
	}

	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrUnavailable)
	}
	return text, nil
}

// BuildPrompt renders the menus as indented JSON inside the instruction.
func BuildPrompt(goal string, menus Menus, topN int) (string, error) {
	menusJSON, err := json.MarshalIndent(menus, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal menus: %w", err)
	}
	return fmt.Sprintf(
		"You are a dietary expert. Given these campus dining hall menus:\n%s\n\n"+
			"List the top %d meals ideal for %s, numbered with a brief justification each.",
		menusJSON, topN, goal,
	), nil
}
