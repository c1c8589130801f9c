package conversation

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"modelchat/internal/models"
	"modelchat/internal/service/chat"
)

const greetingFormat = "Hi! I can help you understand the %s model. What would you like to know?"

// Greeting is the synthetic first turn of every conversation.
func Greeting(sc models.SessionContext) models.Turn {
	turn := models.NewTurn(models.RoleModel, fmt.Sprintf(greetingFormat, sc.TopicLabel))
	turn.Synthetic = true
	return turn
}

// Conversation is one open chat panel: its context, its append-only
// transcript and the session that talks to the remote model.
type Conversation struct {
	ID        string
	Context   models.SessionContext
	CreatedAt time.Time

	session *chat.Session
	// held by Ask from the transcript snapshot until the exchange is appended
	asking atomic.Bool

	mu       sync.RWMutex
	turns    []models.Turn
	lastUsed time.Time
}

func newConversation(id string, sc models.SessionContext, createdAt time.Time, turns []models.Turn, session *chat.Session) *Conversation {
	return &Conversation{
		ID:        id,
		Context:   sc,
		CreatedAt: createdAt,
		session:   session,
		turns:     turns,
		lastUsed:  time.Now(),
	}
}

// Turns returns a copy of the transcript in order.
func (c *Conversation) Turns() []models.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Turn(nil), c.turns...)
}

// Busy reports whether a question is awaiting its reply.
func (c *Conversation) Busy() bool {
	return c.asking.Load() || c.session.Busy()
}

func (c *Conversation) append(turns ...models.Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, turns...)
	c.lastUsed = time.Now()
	c.mu.Unlock()
}

func (c *Conversation) touch() {
	c.mu.Lock()
	c.lastUsed = time.Now()
	c.mu.Unlock()
}

func (c *Conversation) idleSince() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUsed
}
