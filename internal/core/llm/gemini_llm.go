package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/models"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// GenerateChat sends the conversation to Gemini and returns the reply
// plus the provider-reported output token count. All but the last
// message go in as chat history; the assistant role maps to Gemini's
// "model" role. Upstream failures are wrapped with core.ErrModelAPI.
func (g *GeminiLLM) GenerateChat(ctx context.Context, messages []models.ChatMessage, maxTokens int) (string, int, error) {
	if len(messages) == 0 {
		return "", 0, fmt.Errorf("%w: no messages to send", core.ErrModelAPI)
	}

	m := g.client.GenerativeModel(g.modelName)
	m.SetMaxOutputTokens(int32(maxTokens))

	cs := m.StartChat()
	for _, msg := range messages[:len(messages)-1] {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(messages[len(messages)-1].Content))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", core.ErrModelAPI, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", 0, fmt.Errorf("%w: empty response", core.ErrModelAPI)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return b.String(), tokens, nil
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
