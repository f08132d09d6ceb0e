package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/registry"
)

type fakeModel struct {
	response string
	err      error
	inputs   []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.inputs = append(m.inputs, text.Text)
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

var hiToEn = models.TranslationPair{From: models.LangHindi, To: models.LangEnglish}

func TestTranslate(t *testing.T) {
	model := &fakeModel{response: "How to grow rice?"}
	reg := registry.New(zap.NewNop())
	reg.Register(hiToEn.Key(), func(ctx context.Context) (any, error) {
		return llms.Model(model), nil
	})
	svc := NewService(reg, zap.NewNop())

	out, err := svc.Translate(context.Background(), "चावल कैसे उगाएं?", hiToEn)
	require.NoError(t, err)
	assert.Equal(t, "How to grow rice?", out)

	// The raw source text is the model input, no prompt wrapper.
	require.Len(t, model.inputs, 1)
	assert.Equal(t, "चावल कैसे उगाएं?", model.inputs[0])
	assert.True(t, reg.Loaded(hiToEn.Key()), "pair model loaded on first use")
}

func TestTranslateModelError(t *testing.T) {
	reg := registry.New(zap.NewNop())
	reg.Register(hiToEn.Key(), func(ctx context.Context) (any, error) {
		return llms.Model(&fakeModel{err: errors.New("server gone")}), nil
	})
	svc := NewService(reg, zap.NewNop())

	_, err := svc.Translate(context.Background(), "text", hiToEn)
	assert.ErrorIs(t, err, models.ErrTranslationFailed)
}

func TestTranslateNoModelForPair(t *testing.T) {
	svc := NewService(registry.New(zap.NewNop()), zap.NewNop())

	_, err := svc.Translate(context.Background(), "text", models.TranslationPair{
		From: models.LangHindi, To: models.LangTelugu,
	})
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}
