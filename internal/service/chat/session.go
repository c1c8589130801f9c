package chat

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"modelchat/internal/models"
)

// Fixed generation limits for every request.
const (
	MaxOutputTokens = 1000
	Temperature     = 0.7
)

// Limits bounds a single generation.
type Limits struct {
	MaxOutputTokens int
	Temperature     float32
}

// DefaultLimits are the limits applied by Session.Send.
var DefaultLimits = Limits{MaxOutputTokens: MaxOutputTokens, Temperature: Temperature}

// Remote is the hosted chat model. Implementations open a chat bound to
// history, submit prompt and return the textual reply.
type Remote interface {
	SendWithHistory(ctx context.Context, history []RemoteTurn, prompt string, limits Limits) (string, error)
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, history []RemoteTurn, prompt string, limits Limits) (string, error)

func (f RemoteFunc) SendWithHistory(ctx context.Context, history []RemoteTurn, prompt string, limits Limits) (string, error) {
	return f(ctx, history, prompt, limits)
}

// Session sends questions for one conversation. At most one send is in
// flight at a time; a concurrent send fails with KindBusy.
type Session struct {
	remote Remote
	busy   atomic.Bool
	logger zerolog.Logger
}

type remoteResult struct {
	text string
	err  error
}

// NewSession binds a session to remote, which must not be nil.
func NewSession(remote Remote) (*Session, error) {
	if remote == nil {
		return nil, fmt.Errorf("no remote configured: %w", ErrRemoteUnavailable)
	}
	return &Session{
		remote: remote,
		logger: log.With().Str("component", "chat_session").Logger(),
	}, nil
}

// Busy reports whether a send is outstanding.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Send asks question given the prior transcript. It never returns an error:
// every failure is reported through the Outcome. prior is not modified.
func (s *Session) Send(ctx context.Context, question string, sc models.SessionContext, prior []models.Turn) Outcome {
	if strings.TrimSpace(question) == "" {
		return Failure(KindEmptyInput)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Failure(KindBusy)
	}
	defer s.busy.Store(false)

	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Failure(KindCancelled)
	}

	history := EncodeHistory(prior)
	prompt := ComposePrompt(question, sc)
	s.logger.Debug().
		Str("topic", sc.TopicLabel).
		Int("history", len(history)).
		Int("prompt_bytes", len(prompt)).
		Msg("sending question")

	// buffered so an abandoned call can still deliver and exit
	resultCh := make(chan remoteResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- remoteResult{err: fmt.Errorf("remote panic: %v", r)}
			}
		}()
		text, err := s.remote.SendWithHistory(ctx, history, prompt, DefaultLimits)
		resultCh <- remoteResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn().Err(ctx.Err()).Str("topic", sc.TopicLabel).Msg("send cancelled")
		return Failure(KindCancelled)
	case res := <-resultCh:
		if res.err != nil && ctx.Err() != nil {
			s.logger.Warn().Err(res.err).Str("topic", sc.TopicLabel).Msg("send cancelled")
			return Failure(KindCancelled)
		}
		if res.err != nil {
			s.logger.Error().Err(res.err).Str("topic", sc.TopicLabel).Msg("error getting chat response")
			return Failure(KindRemoteUnavailable)
		}
		return Success(res.text)
	}
}
