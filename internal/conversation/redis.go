package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"modelchat/internal/models"
	"modelchat/internal/redis"
)

const redisClosedChannel = "conversation:closed"

type closedMessage struct {
	ConversationID string `json:"conversation_id"`
}

// snapshot is the cached form of an open conversation.
type snapshot struct {
	ID        string                `json:"id"`
	Context   models.SessionContext `json:"context"`
	CreatedAt time.Time             `json:"created_at"`
	Turns     []models.Turn         `json:"turns"`
}

type stateRedis struct {
	client *redis.Client
	ttl    time.Duration
}

func newStateCache(client *redis.Client) *stateRedis {
	return &stateRedis{client: client, ttl: defaultIdleTTL}
}

func transcriptKey(id string) string {
	return fmt.Sprintf("conversation:transcript:%s", id)
}

func (r *stateRedis) save(ctx context.Context, conv *Conversation) {
	if r == nil || r.client == nil || conv == nil {
		return
	}
	data, err := json.Marshal(snapshot{
		ID:        conv.ID,
		Context:   conv.Context,
		CreatedAt: conv.CreatedAt,
		Turns:     conv.Turns(),
	})
	if err != nil {
		log.Error().Err(err).Str("conversation", conv.ID).Msg("marshal transcript failed")
		return
	}
	if err := r.client.Set(ctx, transcriptKey(conv.ID), data, r.ttl); err != nil {
		log.Warn().Err(err).Str("conversation", conv.ID).Msg("cache transcript failed")
	}
}

func (r *stateRedis) load(ctx context.Context, id string) (*snapshot, bool) {
	if r == nil || r.client == nil || id == "" {
		return nil, false
	}
	raw, err := r.client.Get(ctx, transcriptKey(id))
	if err != nil {
		if err != redis.ErrCacheMiss {
			log.Warn().Err(err).Str("conversation", id).Msg("load transcript failed")
		}
		return nil, false
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Str("conversation", id).Msg("decode transcript failed")
		return nil, false
	}
	if snap.ID != id {
		return nil, false
	}
	return &snap, true
}

func (r *stateRedis) refresh(ctx context.Context, id string) {
	if r == nil || r.client == nil {
		return
	}
	if err := r.client.Expire(ctx, transcriptKey(id), r.ttl); err != nil {
		log.Debug().Err(err).Str("conversation", id).Msg("refresh transcript ttl failed")
	}
}

// remove deletes the cached transcript and reports whether it existed.
func (r *stateRedis) remove(ctx context.Context, id string) bool {
	if r == nil || r.client == nil {
		return false
	}
	_, existed := r.load(ctx, id)
	if err := r.client.Del(ctx, transcriptKey(id)); err != nil && err != redis.ErrCacheMiss {
		log.Warn().Err(err).Str("conversation", id).Msg("delete transcript failed")
	}
	return existed
}

func (r *stateRedis) publishClosed(ctx context.Context, id string) {
	if r == nil || r.client == nil {
		return
	}
	payload, err := json.Marshal(closedMessage{ConversationID: id})
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, redisClosedChannel, payload); err != nil {
		log.Warn().Err(err).Str("conversation", id).Msg("publish close failed")
	}
}

// startListener calls handler for every conversation closed on any replica.
func (r *stateRedis) startListener(ctx context.Context, handler func(id string)) error {
	if r == nil || r.client == nil || handler == nil {
		return nil
	}
	return r.client.Subscribe(ctx, redisClosedChannel, func(payload string) {
		var msg closedMessage
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			log.Warn().Err(err).Msg("decode close event failed")
			return
		}
		if msg.ConversationID != "" {
			handler(msg.ConversationID)
		}
	})
}
