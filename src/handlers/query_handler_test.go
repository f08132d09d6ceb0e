package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/mocks"
	"github.com/krishivaani/krishivaani/src/models"
)

func setupQueryRouter(pipeline *mocks.MockPipeline) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewQueryHandler(pipeline, zap.NewNop())
	r.POST("/query", h.HandleQuery)
	r.GET("/health", h.HealthCheck)
	return r
}

func postQuery(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleQueryStreamsTerminalEvent(t *testing.T) {
	pipeline := new(mocks.MockPipeline)
	pipeline.On("Run", mock.Anything, mock.MatchedBy(func(q models.Query) bool {
		return q.Text == "How to grow rice?" && q.TranslateTo == models.LangHindi
	}), mock.Anything).Run(func(args mock.Arguments) {
		emit := args.Get(2).(func(models.StreamEvent) error)
		emit(models.StreamEvent{GeneratedAnswer: "रोपाई से शुरू करें।", Status: models.StatusComplete})
	}).Return(nil)

	w := postQuery(setupQueryRouter(pipeline), `{"text":"How to grow rice?","translate_to":"hi"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 1, "exactly one stream line")

	var event models.StreamEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, models.StatusComplete, event.Status)
	assert.Equal(t, "रोपाई से शुरू करें।", event.GeneratedAnswer)
	pipeline.AssertExpectations(t)
}

func TestHandleQueryStreamsErrorEvent(t *testing.T) {
	pipeline := new(mocks.MockPipeline)
	pipeline.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		emit := args.Get(2).(func(models.StreamEvent) error)
		emit(models.StreamEvent{Error: "Retrieval failed", Status: models.StatusError})
	}).Return(models.ErrRetrievalUnavailable)

	w := postQuery(setupQueryRouter(pipeline), `{"text":"any question"}`)

	// Streaming has already begun; errors arrive in-band, not as HTTP status.
	assert.Equal(t, http.StatusOK, w.Code)

	var event models.StreamEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, models.StatusError, event.Status)
	assert.Equal(t, "Retrieval failed", event.Error)
	assert.Empty(t, event.GeneratedAnswer)
}

func TestHandleQueryRejectsMissingText(t *testing.T) {
	pipeline := new(mocks.MockPipeline)

	w := postQuery(setupQueryRouter(pipeline), `{"lang":"en"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	pipeline.AssertNotCalled(t, "Run")
}

func TestHandleQueryRejectsUnsupportedLanguage(t *testing.T) {
	pipeline := new(mocks.MockPipeline)
	r := setupQueryRouter(pipeline)

	w := postQuery(r, `{"text":"bonjour","lang":"fr"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postQuery(r, `{"text":"hello","translate_to":"fr"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pipeline.AssertNotCalled(t, "Run")
}

func TestHealthCheck(t *testing.T) {
	r := setupQueryRouter(new(mocks.MockPipeline))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
