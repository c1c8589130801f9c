package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"modelchat/internal/catalog"
	"modelchat/internal/conversation"
	"modelchat/internal/models"
	"modelchat/internal/render"
	"modelchat/internal/service/chat"
)

// statusClientClosedRequest is returned when the caller abandoned the request.
const statusClientClosedRequest = 499

type ConversationManager interface {
	Open(ctx context.Context, sc models.SessionContext) (*conversation.Conversation, error)
	Get(ctx context.Context, id string) (*conversation.Conversation, error)
	Ask(ctx context.Context, id, question string) (chat.Outcome, *conversation.Conversation, error)
	Close(ctx context.Context, id string) error
}

// Handler wires HTTP routes to the catalog and the open conversations.
type Handler struct {
	catalog       *catalog.Catalog
	conversations ConversationManager
	renderer      *render.Renderer
}

// NewHandler constructs a Handler instance.
func NewHandler(cat *catalog.Catalog, conversations ConversationManager, renderer *render.Renderer) *Handler {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	return &Handler{
		catalog:       cat,
		conversations: conversations,
		renderer:      renderer,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api")
	api.GET("/subjects", h.listSubjects)
	api.GET("/subjects/:subject/topics", h.listTopics)
	api.GET("/topics", h.searchTopics)
	api.GET("/topics/:topic", h.getTopic)
	api.POST("/conversations", h.openConversation)
	api.GET("/conversations/:id", h.getConversation)
	api.POST("/conversations/:id/messages", h.sendMessage)
	api.DELETE("/conversations/:id", h.closeConversation)
}

func (h *Handler) listSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subjects": h.catalog.Subjects()})
}

func (h *Handler) listTopics(c *gin.Context) {
	topics, err := h.catalog.Topics(c.Param("subject"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (h *Handler) searchTopics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": h.catalog.Search(c.Query("q"))})
}

func (h *Handler) getTopic(c *gin.Context) {
	topic, err := h.catalog.Topic(c.Param("topic"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	c.JSON(http.StatusOK, topic)
}

type openRequest struct {
	TopicID    string `json:"topic_id"`
	TopicLabel string `json:"topic_label"`
}

type turnView struct {
	models.Turn
	HTML string `json:"html,omitempty"`
}

func (h *Handler) openConversation(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	label := strings.TrimSpace(req.TopicLabel)
	if topicID := strings.TrimSpace(req.TopicID); topicID != "" {
		topic, err := h.catalog.Topic(topicID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}
		label = topic.ContextLabel
	}
	if label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic_id or topic_label is required"})
		return
	}
	conv, err := h.conversations.Open(c.Request.Context(), models.SessionContext{TopicLabel: label})
	switch {
	case errors.Is(err, chat.ErrRemoteUnavailable):
		log.Error().Err(err).Msg("open conversation")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": chat.ApologyMessage})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.conversationPayload(conv))
}

func (h *Handler) getConversation(c *gin.Context) {
	conv, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.conversationPayload(conv))
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id := c.Param("id")
	out, conv, err := h.conversations.Ask(c.Request.Context(), id, req.Content)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}

	payload := h.conversationPayload(conv)
	payload["outcome"] = out.Kind
	if out.OK() {
		payload["reply"] = out.Text
		payload["html"] = h.html(out.Text)
		c.JSON(http.StatusOK, payload)
		return
	}
	payload["error"] = out.UserMessage()
	switch out.Kind {
	case chat.KindEmptyInput:
		c.JSON(http.StatusBadRequest, payload)
	case chat.KindBusy:
		c.JSON(http.StatusConflict, payload)
	case chat.KindCancelled:
		c.JSON(statusClientClosedRequest, payload)
	default:
		c.JSON(http.StatusBadGateway, payload)
	}
}

func (h *Handler) closeConversation(c *gin.Context) {
	if err := h.conversations.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.writeLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lookup(c *gin.Context) (*conversation.Conversation, bool) {
	conv, err := h.conversations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeLookupError(c, err)
		return nil, false
	}
	return conv, true
}

func (h *Handler) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, conversation.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("conversation lookup failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *Handler) conversationPayload(conv *conversation.Conversation) gin.H {
	turns := conv.Turns()
	views := make([]turnView, 0, len(turns))
	for _, t := range turns {
		view := turnView{Turn: t}
		if t.Role == models.RoleModel {
			view.HTML = h.html(t.Text)
		}
		views = append(views, view)
	}
	return gin.H{
		"conversation_id": conv.ID,
		"topic_label":     conv.Context.TopicLabel,
		"created_at":      conv.CreatedAt,
		"busy":            conv.Busy(),
		"turns":           views,
	}
}

// html renders for display; on failure the client falls back to the raw text.
func (h *Handler) html(text string) string {
	out, err := h.renderer.HTML(text)
	if err != nil {
		log.Warn().Err(err).Msg("render reply failed")
		return ""
	}
	return out
}
