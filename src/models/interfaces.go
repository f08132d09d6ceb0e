package models

import (
	"context"
	"time"
)

// LanguageRouter decides the source language and translation direction.
type LanguageRouter interface {
	// Detect never fails: on detector error or an ambiguous result it
	// returns the pivot language with IsSupported=false semantics.
	Detect(text string) DetectedLanguage
	// ResolvePath reports whether inbound/outbound translation through
	// the pivot is needed.
	ResolvePath(detected, requested Language) (needsIn bool, needsOut bool)
}

// Embedder converts normalized text into a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Retriever finds the top-k knowledge-base entries most similar to a
// query vector.
type Retriever interface {
	Search(ctx context.Context, vector []float32, k int) (RetrievalResult, error)
}

// Generator produces a grounded answer from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator translates text for one directional language pair.
type Translator interface {
	Translate(ctx context.Context, text string, pair TranslationPair) (string, error)
}

// AnswerCache maps a deterministic query key to a previously computed
// final answer. Best effort: callers must treat failures as misses.
type AnswerCache interface {
	Get(ctx context.Context, key string) (*AnswerPayload, error)
	Set(ctx context.Context, key string, payload *AnswerPayload, ttl time.Duration) error
	Close() error
}

// PipelineRunner is the single externally-invoked entry point of the
// query pipeline. Exactly one terminal StreamEvent is emitted per run.
type PipelineRunner interface {
	Run(ctx context.Context, q Query, emit func(StreamEvent) error) error
}
