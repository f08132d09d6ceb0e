package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/registry"
	"github.com/krishivaani/krishivaani/src/utils"
)

// contextWindowTokens is the phi-3-mini context window. Prompts that
// leave no room for the completion are flagged before the call.
const contextWindowTokens = 4096

// Engine produces a grounded answer from an assembled prompt using the
// generation model held by the registry. Generation is blocking and
// expensive; failures are fatal for the request and never retried.
type Engine struct {
	registry *registry.Registry
	cfg      *config.GenerationConfig
	logger   *zap.Logger
}

func NewEngine(reg *registry.Registry, cfg *config.GenerationConfig, logger *zap.Logger) *Engine {
	return &Engine{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
	}
}

func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	handle, err := e.registry.GetOrLoad(ctx, registry.KeyGen)
	if err != nil {
		return "", err
	}
	llm := handle.Value().(llms.Model)

	if est := utils.EstimateTokenCount(prompt); est+e.cfg.MaxTokens > contextWindowTokens {
		e.logger.Warn("prompt may exceed model context window",
			zap.Int("estimated_prompt_tokens", est),
			zap.Int("max_tokens", e.cfg.MaxTokens))
	}

	response, err := llms.GenerateFromSinglePrompt(
		ctx,
		llm,
		prompt,
		llms.WithTemperature(e.cfg.Temperature),
		llms.WithMaxTokens(e.cfg.MaxTokens),
	)
	if err != nil {
		e.logger.Error("generation failed", zap.String("model", e.cfg.Model), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("%w: model returned an empty answer", models.ErrGenerationFailed)
	}

	return response, nil
}
