package composer

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// GenAiClient is the narrow interface over a remote generative endpoint.
// The composer only ever needs "prompt in, raw text out".
type GenAiClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient is the Google Gemini implementation of GenAiClient.
type GeminiClient struct {
	model *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini client for the given model name.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GeminiClient{model: client.GenerativeModel(modelName)}, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyCompletion
	}

	return sb.String(), nil
}

// OpenAiClient is the OpenAI chat-completion implementation of GenAiClient.
type OpenAiClient struct {
	client *openai.Client
	model  string
}

// NewOpenAiClient creates an OpenAI-backed client for the given model name.
func NewOpenAiClient(apiKey, model string) *OpenAiClient {
	return &OpenAiClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}
