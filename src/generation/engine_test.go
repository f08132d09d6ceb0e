package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/registry"
)

// fakeModel implements llms.Model with a canned response.
type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.response, m.err
}

func newTestEngine(model *fakeModel) *Engine {
	reg := registry.New(zap.NewNop())
	reg.Register(registry.KeyGen, func(ctx context.Context) (any, error) {
		return llms.Model(model), nil
	})
	return NewEngine(reg, &config.GenerationConfig{
		Model:       "phi-3-mini-4k-instruct",
		MaxTokens:   512,
		Temperature: 0.7,
	}, zap.NewNop())
}

func TestGenerate(t *testing.T) {
	model := &fakeModel{response: "  Water them twice a week.  "}
	engine := newTestEngine(model)

	answer, err := engine.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Water them twice a week.", answer, "whitespace trimmed")
	require.Len(t, model.prompts, 1)
	assert.Equal(t, "prompt text", model.prompts[0])
}

func TestGenerateOversizedPromptStillRuns(t *testing.T) {
	model := &fakeModel{response: "answer"}
	engine := newTestEngine(model)

	// Well past the context window estimate; the guard warns but the call
	// still goes through untruncated.
	prompt := strings.Repeat("x", contextWindowTokens*8)
	answer, err := engine.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
	require.Len(t, model.prompts, 1)
	assert.Len(t, model.prompts[0], contextWindowTokens*8)
}

func TestGenerateModelError(t *testing.T) {
	engine := newTestEngine(&fakeModel{err: errors.New("inference server down")})

	_, err := engine.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGenerateEmptyAnswer(t *testing.T) {
	engine := newTestEngine(&fakeModel{response: "   "})

	_, err := engine.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGenerateModelUnavailable(t *testing.T) {
	reg := registry.New(zap.NewNop())
	reg.Register(registry.KeyGen, func(ctx context.Context) (any, error) {
		return nil, errors.New("weights fetch failed")
	})
	engine := NewEngine(reg, &config.GenerationConfig{}, zap.NewNop())

	_, err := engine.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}
