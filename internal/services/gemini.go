package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talentsift/resume-scorer/internal/logger"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
	RoleModel  = "model"
)

// LLMGateway is the language model capability used by the scoring pipeline:
// free-text chat completion, schema-constrained extraction, and embeddings.
// Every method can fail upstream; such errors wrap ErrUpstream and are
// propagated as-is, never retried here.
type LLMGateway interface {
	ChatComplete(ctx context.Context, messages []Message, temperature *float32) (string, error)
	// ExtractStructured asks the model to answer in the shape of schema and
	// unmarshals the reply into out. The model produces the compliant
	// object; no heuristic parsing happens on this path.
	ExtractStructured(ctx context.Context, messages []Message, schema *genai.Schema, out any) error
	Embed(ctx context.Context, text string) ([]float32, error)
}

type geminiGateway struct {
	client     *genai.Client
	modelName  string
	embedModel string
	logger     *zap.Logger
}

func NewGeminiGateway(ctx context.Context, apiKey, model, embedModel string, log *zap.Logger) (LLMGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGateway{
		client:     client,
		modelName:  model,
		embedModel: embedModel,
		logger:     log,
	}, nil
}

// ChatComplete implements LLMGateway.
func (g *geminiGateway) ChatComplete(ctx context.Context, messages []Message, temperature *float32) (string, error) {
	system, contents := toGenAIContents(messages)

	config := &genai.GenerateContentConfig{
		Temperature:     temperature,
		MaxOutputTokens: 4096,
	}
	if system != nil {
		config.SystemInstruction = system
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrUpstream, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrUpstream)
	}

	g.logger.Debug("chat completion",
		zap.String("model", g.modelName),
		zap.String("response", logger.TruncateForLog(text, 300)),
	)

	return text, nil
}

// ExtractStructured implements LLMGateway.
func (g *geminiGateway) ExtractStructured(ctx context.Context, messages []Message, schema *genai.Schema, out any) error {
	system, contents := toGenAIContents(messages)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if system != nil {
		config.SystemInstruction = system
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return fmt.Errorf("%w: extract structured content: %v", ErrUpstream, err)
	}

	text := resp.Text()
	if text == "" {
		return fmt.Errorf("%w: no structured content in response", ErrUpstream)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: decode structured response: %v", ErrUpstream, err)
	}

	return nil
}

// Embed implements LLMGateway.
func (g *geminiGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: generate embedding: %v", ErrUpstream, err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrUpstream)
	}

	return result.Embeddings[0].Values, nil
}

// toGenAIContents splits the conversation into the system instruction and
// the role-tagged turns the Gemini API expects.
func toGenAIContents(messages []Message) (system *genai.Content, contents []*genai.Content) {
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
		case RoleModel:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	return system, contents
}
