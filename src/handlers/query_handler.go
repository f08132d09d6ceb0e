package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/models"
)

// QueryHandler exposes the query pipeline as a streamed NDJSON endpoint.
type QueryHandler struct {
	pipeline models.PipelineRunner
	logger   *zap.Logger
}

func NewQueryHandler(pipeline models.PipelineRunner, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// HandleQuery streams newline-delimited JSON objects; the stream always
// terminates with exactly one object carrying status "complete" or
// "error", so clients never see a hung connection on internal failure.
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var q models.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if q.Language != "" && !q.Language.Supported() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language: " + string(q.Language)})
		return
	}
	if q.TranslateTo != "" && !q.TranslateTo.Supported() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language: " + string(q.TranslateTo)})
		return
	}

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(c.Writer)
	emit := func(event models.StreamEvent) error {
		// Encode appends the newline that delimits stream lines.
		if err := encoder.Encode(event); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if err := h.pipeline.Run(c.Request.Context(), q, emit); err != nil {
		// The terminal event already reached the client (or the client
		// went away); this is for the server log only.
		h.logger.Warn("query pipeline ended with error", zap.Error(err))
	}
}

func (h *QueryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
