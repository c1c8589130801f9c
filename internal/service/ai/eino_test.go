package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelchat/internal/config"
	"modelchat/internal/service/chat"
)

type fakeChatModel struct {
	input []*schema.Message
	opts  *model.Options
	reply *schema.Message
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func TestEinoRemoteMapsHistoryAndLimits(t *testing.T) {
	fake := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "**Hello** world"}}
	remote := NewEinoRemote(fake)
	history := []chat.RemoteTurn{
		{Role: chat.RemoteRoleUser, Parts: []chat.Part{{Text: "What is the aorta?"}}},
		{Role: chat.RemoteRoleModel, Parts: []chat.Part{{Text: "The main artery."}}},
	}

	text, err := remote.SendWithHistory(context.Background(), history, "composed prompt", chat.DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "**Hello** world", text)

	require.Len(t, fake.input, 3)
	assert.Equal(t, schema.User, fake.input[0].Role)
	assert.Equal(t, "What is the aorta?", fake.input[0].Content)
	assert.Equal(t, schema.Assistant, fake.input[1].Role)
	assert.Equal(t, schema.User, fake.input[2].Role)
	assert.Equal(t, "composed prompt", fake.input[2].Content)

	require.NotNil(t, fake.opts.MaxTokens)
	assert.Equal(t, 1000, *fake.opts.MaxTokens)
	require.NotNil(t, fake.opts.Temperature)
	assert.InDelta(t, 0.7, *fake.opts.Temperature, 1e-6)
}

func TestEinoRemoteErrors(t *testing.T) {
	_, err := NewEinoRemote(&fakeChatModel{err: errors.New("quota exceeded")}).
		SendWithHistory(context.Background(), nil, "p", chat.DefaultLimits)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = NewEinoRemote(&fakeChatModel{}).
		SendWithHistory(context.Background(), nil, "p", chat.DefaultLimits)
	require.Error(t, err)
}

func TestNewRemoteProviders(t *testing.T) {
	ctx := context.Background()

	_, err := NewRemote(ctx, "mistral", config.ProviderConfig{APIKey: "k", Model: "m"})
	require.Error(t, err)

	_, err = NewRemote(ctx, "gemini", config.ProviderConfig{Model: "gemini-2.0-flash"})
	require.Error(t, err)

	r, err := NewRemote(ctx, "gemini", config.ProviderConfig{APIKey: "k", Model: "gemini-2.0-flash"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiChat{}, r)

	_, err = NewRemote(ctx, "gemini", config.ProviderConfig{APIKey: "k", Model: "gemini-2.0-flash", Driver: "grpc"})
	require.Error(t, err)

	r, err = NewRemote(ctx, "openai", config.ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &EinoRemote{}, r)
}
