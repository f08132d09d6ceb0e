package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/store"
)

// CommunityHandler serves the farmer community Q&A board.
type CommunityHandler struct {
	community *store.CommunityStore
	logger    *zap.Logger
}

func NewCommunityHandler(community *store.CommunityStore, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{
		community: community,
		logger:    logger,
	}
}

type postQuestionRequest struct {
	Question  string `json:"question" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Language  string `json:"language,omitempty"`
	ImageData string `json:"image_data,omitempty"`
}

func (h *CommunityHandler) PostQuestion(c *gin.Context) {
	username := c.GetString("username")

	var req postQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Language == "" {
		req.Language = "en"
	}

	question := &store.CommunityQuestion{
		UserID:    username,
		UserName:  username,
		Question:  req.Question,
		Category:  req.Category,
		Language:  req.Language,
		ImageData: req.ImageData,
	}
	if err := h.community.CreateQuestion(c.Request.Context(), question); err != nil {
		h.logger.Error("failed to post question", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"question_id": question.ID,
		"message":     "Question posted successfully",
	})
}

func (h *CommunityHandler) ListQuestions(c *gin.Context) {
	category := c.Query("category")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	questions, err := h.community.ListQuestions(c.Request.Context(), category, limit)
	if err != nil {
		h.logger.Error("failed to list questions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

type postAnswerRequest struct {
	Answer     string `json:"answer" binding:"required"`
	IsAIAnswer bool   `json:"is_ai_answer,omitempty"`
}

func (h *CommunityHandler) PostAnswer(c *gin.Context) {
	username := c.GetString("username")

	questionID, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	var req postAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer := &store.CommunityAnswer{
		QuestionID: uint(questionID),
		UserID:     username,
		UserName:   username,
		Answer:     req.Answer,
		IsAIAnswer: req.IsAIAnswer,
	}
	if err := h.community.CreateAnswer(c.Request.Context(), answer); err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return
		}
		h.logger.Error("failed to post answer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"answer_id": answer.ID,
	})
}

func (h *CommunityHandler) ListAnswers(c *gin.Context) {
	questionID, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	answers, err := h.community.ListAnswers(c.Request.Context(), uint(questionID))
	if err != nil {
		h.logger.Error("failed to list answers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list answers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answers": answers,
		"count":   len(answers),
	})
}

type voteRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   uint   `json:"target_id" binding:"required"`
	VoteType   string `json:"vote_type" binding:"required"`
}

func (h *CommunityHandler) Vote(c *gin.Context) {
	username := c.GetString("username")

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.community.Vote(c.Request.Context(), username, req.TargetType, req.TargetID, req.VoteType)
	if err != nil {
		if errors.Is(err, store.ErrInvalidVote) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote"})
			return
		}
		h.logger.Error("failed to record vote", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
