package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/krishivaani/krishivaani/src/models"
)

// MockEmbedder implements models.Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Dimension() int {
	args := m.Called()
	return args.Int(0)
}

// MockRetriever implements models.Retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Search(ctx context.Context, vector []float32, k int) (models.RetrievalResult, error) {
	args := m.Called(ctx, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.RetrievalResult), args.Error(1)
}

// MockGenerator implements models.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockTranslator implements models.Translator
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string, pair models.TranslationPair) (string, error) {
	args := m.Called(ctx, text, pair)
	return args.String(0), args.Error(1)
}

// MockCache implements models.AnswerCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (*models.AnswerPayload, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerPayload), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, payload *models.AnswerPayload, ttl time.Duration) error {
	args := m.Called(ctx, key, payload, ttl)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPipeline implements models.PipelineRunner
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Run(ctx context.Context, q models.Query, emit func(models.StreamEvent) error) error {
	args := m.Called(ctx, q, emit)
	return args.Error(0)
}
