package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/registry"
)

// Service translates text through the per-pair opus-mt models held by the
// registry. Exactly one live model instance exists per directional pair
// for the process lifetime; the served models take the raw source text as
// the prompt and return the translation.
type Service struct {
	registry *registry.Registry
	logger   *zap.Logger
}

func NewService(reg *registry.Registry, logger *zap.Logger) *Service {
	return &Service{
		registry: reg,
		logger:   logger,
	}
}

func (s *Service) Translate(ctx context.Context, text string, pair models.TranslationPair) (string, error) {
	handle, err := s.registry.GetOrLoad(ctx, pair.Key())
	if err != nil {
		return "", err
	}
	llm := handle.Value().(llms.Model)

	translated, err := llms.GenerateFromSinglePrompt(ctx, llm, text)
	if err != nil {
		s.logger.Error("translation failed",
			zap.String("pair", pair.Key()), zap.Error(err))
		return "", fmt.Errorf("%w (%s-%s): %v", models.ErrTranslationFailed, pair.From, pair.To, err)
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", fmt.Errorf("%w (%s-%s): empty translation", models.ErrTranslationFailed, pair.From, pair.To)
	}

	return translated, nil
}
