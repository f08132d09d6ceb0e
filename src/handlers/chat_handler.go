package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/chat"
	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/store"
)

// ChatHandler routes conversational turns through the query pipeline and
// persists the history per session.
type ChatHandler struct {
	pipeline models.PipelineRunner
	sessions *store.ChatStore
	logger   *zap.Logger
}

func NewChatHandler(pipeline models.PipelineRunner, sessions *store.ChatStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleChat answers one chat message with conversation context.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()
	username := c.GetString("username")

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// Get or create session
	var session *store.ChatSession
	var err error
	if req.SessionID != "" {
		session, err = h.sessions.GetSession(ctx, req.SessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		if session.UserID != username {
			c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
			return
		}
	} else {
		session, err = h.sessions.CreateSession(ctx, username)
		if err != nil {
			h.logger.Error("session creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
	}

	history, err := h.sessions.RecentMessages(ctx, session.SessionID, chat.ContextWindow())
	if err != nil {
		h.logger.Warn("failed to load chat history, continuing without it", zap.Error(err))
		history = nil
	}

	q := models.Query{
		Text:        chat.ComposeQuestion(chat.BuildConversationContext(history), req.Message),
		Language:    req.Language,
		TranslateTo: req.TranslateTo,
	}

	var terminal models.StreamEvent
	runErr := h.pipeline.Run(ctx, q, func(event models.StreamEvent) error {
		terminal = event
		return nil
	})
	if terminal.Status != models.StatusComplete {
		if runErr != nil {
			h.logger.Error("chat pipeline failed", zap.Error(runErr))
		}
		msg := terminal.Error
		if msg == "" {
			msg = "Chat failed"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
		return
	}

	language := req.TranslateTo
	if language == "" {
		language = models.PivotLanguage
	}

	if err := h.sessions.AppendMessage(ctx, &store.ChatMessage{
		SessionID: session.SessionID,
		UserID:    username,
		Message:   req.Message,
		Response:  terminal.GeneratedAnswer,
		Language:  string(language),
	}); err != nil {
		h.logger.Warn("failed to persist chat turn", zap.Error(err))
	}

	count, err := h.sessions.CountMessages(ctx, session.SessionID)
	if err != nil {
		count = 0
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		SessionID:    session.SessionID,
		Response:     terminal.GeneratedAnswer,
		Language:     language,
		Latency:      time.Since(startTime),
		MessageCount: count,
		Timestamp:    time.Now(),
	})
}

// GetSession returns session metadata and its messages.
func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	username := c.GetString("username")

	session, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	if session.UserID != username {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
		return
	}

	messages, err := h.sessions.RecentMessages(c.Request.Context(), sessionID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"messages": messages,
	})
}

// ListSessions returns the caller's sessions, most recent first.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	username := c.GetString("username")

	sessions, err := h.sessions.ListSessions(c.Request.Context(), username, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
