package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/config"
	"github.com/krishivaani/krishivaani/src/registry"
)

// Service converts normalized text into a fixed-size vector using the
// embedding model held by the registry. Embed is deterministic for
// identical input and model version and has no side effects; it is
// CPU-bound on the serving side, so callers run it off the request
// scheduling context.
type Service struct {
	registry *registry.Registry
	cfg      *config.EmbeddingConfig
	logger   *zap.Logger
}

func NewService(reg *registry.Registry, cfg *config.EmbeddingConfig, logger *zap.Logger) *Service {
	return &Service{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
	}
}

// Dimension is the fixed output width of the embedding model. The
// knowledge-base column width is checked against it at startup.
func (s *Service) Dimension() int {
	return s.cfg.Dimension
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	handle, err := s.registry.GetOrLoad(ctx, registry.KeyEmbed)
	if err != nil {
		return nil, err
	}
	client := handle.Value().(*openai.Client)

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{strings.TrimSpace(text)},
		Model:          openai.EmbeddingModel(s.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != s.cfg.Dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), s.cfg.Dimension)
	}

	// The knowledge base stores L2-normalized vectors; queries must use
	// the same convention so cosine and inner product agree.
	return Normalize(vec), nil
}

// Normalize scales a vector to unit L2 norm. Zero vectors pass through.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
