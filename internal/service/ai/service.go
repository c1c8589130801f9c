package ai

import (
	"context"
	"net/http"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"modelchat/internal/config"
	"modelchat/internal/service/chat"
)

const (
	DriverChat = "chat"
	DriverEino = "eino"
)

// NewRemote builds the chat.Remote for the named provider.
func NewRemote(ctx context.Context, provider string, p config.ProviderConfig) (chat.Remote, error) {
	if p.APIKey == "" {
		return nil, errors.Errorf("api key for provider %s is empty", provider)
	}
	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case "gemini":
		client, err := newGenaiClient(ctx, p, nil)
		if err != nil {
			return nil, err
		}
		if p.Driver == "" || p.Driver == DriverChat {
			log.Info().Str("provider", provider).Str("model", p.Model).Msg("using gemini chat sessions")
			return NewGeminiChat(client, p.Model), nil
		}
		if p.Driver != DriverEino {
			return nil, errors.Errorf("invalid driver %s for provider %s", p.Driver, provider)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  p.Model,
		})
		if err != nil {
			return nil, errors.Wrap(err, "init gemini chat model")
		}
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: p.BaseURL,
			Model:   p.Model,
			APIKey:  p.APIKey,
		})
		if err != nil {
			return nil, errors.Wrap(err, "init openai chat model")
		}
	case "claude":
		var baseURLPtr *string
		if p.BaseURL != "" {
			baseURLPtr = &p.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    p.APIKey,
			Model:     p.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: chat.MaxOutputTokens,
		})
		if err != nil {
			return nil, errors.Wrap(err, "init claude chat model")
		}
	default:
		return nil, errors.Errorf("invalid provider: %s", provider)
	}
	log.Info().Str("provider", provider).Str("model", p.Model).Msg("using eino chat model")
	return NewEinoRemote(chatModel), nil
}

func newGenaiClient(ctx context.Context, p config.ProviderConfig, httpClient *http.Client) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     p.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if p.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "new gemini client")
	}
	return client, nil
}
