package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelchat/internal/config"
	"modelchat/internal/service/chat"
)

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func newGeminiServer(t *testing.T, status int, body string, got *generateRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGeminiChat(t *testing.T, srv *httptest.Server) *GeminiChat {
	t.Helper()
	client, err := newGenaiClient(context.Background(), config.ProviderConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	return NewGeminiChat(client, "gemini-2.0-flash")
}

func TestGeminiChatSendsHistoryThenPrompt(t *testing.T) {
	var got generateRequest
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"**Hello** world"}]},"finishReason":"STOP"}]}`,
		&got)
	g := newTestGeminiChat(t, srv)

	history := []chat.RemoteTurn{
		{Role: chat.RemoteRoleUser, Parts: []chat.Part{{Text: "What is the aorta?"}}},
		{Role: chat.RemoteRoleModel, Parts: []chat.Part{{Text: "The main artery."}}},
	}
	text, err := g.SendWithHistory(context.Background(), history, "composed prompt", chat.DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "**Hello** world", text)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "What is the aorta?", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "user", got.Contents[2].Role)
	assert.Equal(t, "composed prompt", got.Contents[2].Parts[0].Text)
}

func TestGeminiChatNoCandidates(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"candidates":[]}`, nil)
	g := newTestGeminiChat(t, srv)

	_, err := g.SendWithHistory(context.Background(), nil, "p", chat.DefaultLimits)
	require.Error(t, err)
}

func TestGeminiChatServerError(t *testing.T) {
	srv := newGeminiServer(t, http.StatusServiceUnavailable,
		`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`, nil)
	g := newTestGeminiChat(t, srv)

	_, err := g.SendWithHistory(context.Background(), nil, "p", chat.DefaultLimits)
	require.Error(t, err)
}

func TestToGenaiContents(t *testing.T) {
	contents := toGenaiContents([]chat.RemoteTurn{
		{Role: chat.RemoteRoleModel, Parts: []chat.Part{{Text: "a"}, {Text: "b"}}},
	})
	require.Len(t, contents, 1)
	assert.Equal(t, "model", contents[0].Role)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "b", contents[0].Parts[1].Text)
}
