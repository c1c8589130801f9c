package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"modelchat/internal/models"
	"modelchat/internal/redis"
	"modelchat/internal/service/chat"
)

var (
	ErrNotFound   = errors.New("conversation not found")
	ErrEmptyTopic = errors.New("topic label is required")
)

const defaultIdleTTL = 30 * time.Minute

// Manager keeps the open conversations of this process.
type Manager struct {
	remote  chat.Remote
	idleTTL time.Duration
	mirror  *stateRedis
	logger  zerolog.Logger

	mu            sync.Mutex
	conversations map[string]*Conversation
}

type Option func(*Manager)

// WithIdleTTL discards conversations unused for ttl.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithRedis mirrors open transcripts to redis so other replicas can resume them.
func WithRedis(client *redis.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.mirror = newStateCache(client)
		}
	}
}

func NewManager(remote chat.Remote, opts ...Option) *Manager {
	m := &Manager{
		remote:        remote,
		idleTTL:       defaultIdleTTL,
		logger:        log.With().Str("component", "conversation_manager").Logger(),
		conversations: make(map[string]*Conversation),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.mirror != nil {
		m.mirror.ttl = m.idleTTL
	}
	return m
}

// Open starts a conversation seeded with the greeting.
func (m *Manager) Open(ctx context.Context, sc models.SessionContext) (*Conversation, error) {
	sc.TopicLabel = strings.TrimSpace(sc.TopicLabel)
	if sc.TopicLabel == "" {
		return nil, ErrEmptyTopic
	}
	session, err := chat.NewSession(m.remote)
	if err != nil {
		return nil, err
	}
	conv := newConversation(uuid.NewString(), sc, time.Now().UTC(), []models.Turn{Greeting(sc)}, session)

	m.mu.Lock()
	m.conversations[conv.ID] = conv
	m.mu.Unlock()

	m.mirror.save(ctx, conv)
	m.logger.Info().Str("conversation", conv.ID).Str("topic", sc.TopicLabel).Msg("conversation opened")
	return conv, nil
}

// Get returns an open conversation, resuming it from the mirror when another
// replica opened it.
func (m *Manager) Get(ctx context.Context, id string) (*Conversation, error) {
	m.mu.Lock()
	conv, ok := m.conversations[id]
	m.mu.Unlock()
	if ok {
		conv.touch()
		m.mirror.refresh(ctx, id)
		return conv, nil
	}

	snap, ok := m.mirror.load(ctx, id)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	session, err := chat.NewSession(m.remote)
	if err != nil {
		return nil, err
	}
	conv = newConversation(snap.ID, snap.Context, snap.CreatedAt, snap.Turns, session)

	m.mu.Lock()
	if existing, ok := m.conversations[id]; ok {
		conv = existing
	} else {
		m.conversations[id] = conv
	}
	m.mu.Unlock()
	m.mirror.refresh(ctx, id)
	m.logger.Debug().Str("conversation", id).Msg("conversation resumed from redis")
	return conv, nil
}

// Close discards a conversation and everything recorded for it.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.conversations[id]
	delete(m.conversations, id)
	m.mu.Unlock()

	if m.mirror != nil {
		removed := m.mirror.remove(ctx, id)
		m.mirror.publishClosed(ctx, id)
		ok = ok || removed
	}
	if !ok {
		return errors.Wrap(ErrNotFound, id)
	}
	m.logger.Info().Str("conversation", id).Msg("conversation closed")
	return nil
}

// Ask sends question and records the exchange. Only one exchange per
// conversation runs at a time, from the transcript snapshot to the append.
// Rejected input (empty or busy) leaves the transcript untouched. Otherwise the user turn is kept
// even when the reply fails, so the user can resend it.
func (m *Manager) Ask(ctx context.Context, id, question string) (chat.Outcome, *Conversation, error) {
	conv, err := m.Get(ctx, id)
	if err != nil {
		return chat.Outcome{}, nil, err
	}

	if strings.TrimSpace(question) == "" {
		return chat.Failure(chat.KindEmptyInput), conv, nil
	}
	if !conv.asking.CompareAndSwap(false, true) {
		return chat.Failure(chat.KindBusy), conv, nil
	}
	defer conv.asking.Store(false)

	userTurn := models.NewTurn(models.RoleUser, question)
	out := conv.session.Send(ctx, question, conv.Context, conv.Turns())
	switch out.Kind {
	case chat.KindEmptyInput, chat.KindBusy:
		return out, conv, nil
	}

	added := []models.Turn{userTurn}
	if out.OK() {
		added = append(added, models.NewTurn(models.RoleModel, out.Text))
	}
	conv.append(added...)
	m.mirror.save(context.WithoutCancel(ctx), conv)
	return out, conv, nil
}

// Len reports the number of conversations held locally.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// Run sweeps idle conversations and follows close events from other
// replicas until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.mirror != nil {
		if err := m.mirror.startListener(ctx, m.dropLocal); err != nil {
			return err
		}
	}
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := m.sweep(now); n > 0 {
				m.logger.Info().Int("count", n).Msg("discarded idle conversations")
			}
		}
	}
}

// sweep removes conversations idle since before now-idleTTL. Busy ones stay.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, conv := range m.conversations {
		if conv.Busy() {
			continue
		}
		if now.Sub(conv.idleSince()) >= m.idleTTL {
			delete(m.conversations, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) dropLocal(id string) {
	m.mu.Lock()
	delete(m.conversations, id)
	m.mu.Unlock()
}
