package ai

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"modelchat/internal/service/chat"
)

// GeminiChat opens a fresh Gemini chat seeded with the caller's history for
// every request, so no history accumulates inside the SDK.
type GeminiChat struct {
	client *genai.Client
	model  string
}

func NewGeminiChat(client *genai.Client, model string) *GeminiChat {
	return &GeminiChat{client: client, model: model}
}

func (g *GeminiChat) SendWithHistory(ctx context.Context, history []chat.RemoteTurn, prompt string, limits chat.Limits) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(limits.MaxOutputTokens),
		Temperature:     genai.Ptr(limits.Temperature),
	}
	session, err := g.client.Chats.Create(ctx, g.model, cfg, toGenaiContents(history))
	if err != nil {
		return "", errors.Wrap(err, "start gemini chat")
	}
	resp, err := session.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", errors.Wrap(err, "send gemini message")
	}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", errors.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini returned no candidates")
	}
	return resp.Text(), nil
}

func toGenaiContents(history []chat.RemoteTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == chat.RemoteRoleModel {
			role = genai.RoleModel
		}
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, &genai.Content{Role: string(role), Parts: parts})
	}
	return contents
}
