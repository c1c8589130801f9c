package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"

	"modelchat/internal/service/chat"
)

// EinoRemote sends requests through any eino chat model.
type EinoRemote struct {
	chatModel model.BaseChatModel
}

func NewEinoRemote(chatModel model.BaseChatModel) *EinoRemote {
	return &EinoRemote{chatModel: chatModel}
}

func (e *EinoRemote) SendWithHistory(ctx context.Context, history []chat.RemoteTurn, prompt string, limits chat.Limits) (string, error) {
	resp, err := e.chatModel.Generate(ctx, convertMessages(history, prompt),
		model.WithMaxTokens(limits.MaxOutputTokens),
		model.WithTemperature(limits.Temperature),
	)
	if err != nil {
		return "", errors.Wrap(err, "generate chat response")
	}
	if resp == nil {
		return "", errors.New("chat model returned no message")
	}
	return resp.Content, nil
}

func convertMessages(history []chat.RemoteTurn, prompt string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	for _, turn := range history {
		var role schema.RoleType
		switch turn.Role {
		case chat.RemoteRoleModel:
			role = schema.Assistant
		default:
			role = schema.User
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: turn.Text(),
		})
	}
	return append(messages, &schema.Message{Role: schema.User, Content: prompt})
}
