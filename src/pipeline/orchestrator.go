package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/cache"
	"github.com/krishivaani/krishivaani/src/models"
)

// Stage names of the pipeline state machine, in execution order. Each
// stage is a potential exit point on failure; the cache check is the only
// early-exit path on success.
type Stage string

const (
	StageReceived     Stage = "RECEIVED"
	StageCacheCheck   Stage = "CACHE_CHECK"
	StageLangDetect   Stage = "LANG_DETECT"
	StageTranslateIn  Stage = "TRANSLATE_IN"
	StageEmbed        Stage = "EMBED"
	StageRetrieve     Stage = "RETRIEVE"
	StageGenerate     Stage = "GENERATE"
	StageTranslateOut Stage = "TRANSLATE_OUT"
	StageCacheWrite   Stage = "CACHE_WRITE"
	StageDone         Stage = "DONE"
	StageError        Stage = "ERROR"
)

// EmitFunc delivers one stream line to the client. Returning an error
// aborts the run.
type EmitFunc func(models.StreamEvent) error

// Options tunes the orchestrator. Zero timeouts disable the per-stage
// deadline for that call.
type Options struct {
	Workers          int
	TopK             int
	MaxContextChars  int
	CacheTTL         time.Duration
	CacheTimeout     time.Duration
	TranslateTimeout time.Duration
	EmbedTimeout     time.Duration
	RetrieveTimeout  time.Duration
	GenerateTimeout  time.Duration
}

func (o *Options) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.TopK <= 0 {
		o.TopK = 3
	}
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = 4000
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Hour
	}
}

// Orchestrator drives the query pipeline: detection, translation to the
// pivot, cache lookup, embedding, retrieval, generation, translation back,
// cache write, and the single terminal stream emission. Blocking model
// calls run on a shared worker pool so in-flight requests do not stall
// each other's scheduling.
type Orchestrator struct {
	router     models.LanguageRouter
	cache      models.AnswerCache
	embedder   models.Embedder
	retriever  models.Retriever
	generator  models.Generator
	translator models.Translator
	pool       *ants.Pool
	opts       Options
	logger     *zap.Logger
}

func New(
	router models.LanguageRouter,
	answerCache models.AnswerCache,
	embedder models.Embedder,
	retriever models.Retriever,
	generator models.Generator,
	translator models.Translator,
	opts Options,
	logger *zap.Logger,
) (*Orchestrator, error) {
	opts.withDefaults()

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		router:     router,
		cache:      answerCache,
		embedder:   embedder,
		retriever:  retriever,
		generator:  generator,
		translator: translator,
		pool:       pool,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

// Run executes the pipeline for one query. It emits exactly one terminal
// stream event unless the client context is cancelled first, in which
// case remaining work is abandoned. The returned error reports the
// internal failure for logging; the client-facing message is in the
// terminal event.
func (o *Orchestrator) Run(ctx context.Context, q models.Query, emit func(models.StreamEvent) error) error {
	started := time.Now()

	// Effective languages. A declared source language overrides
	// detection; otherwise the detector's advisory result is resolved up
	// front so the cache key is known before the cache check. Detection
	// fails soft to the pivot, never the pipeline.
	src := q.Language
	if !src.Supported() {
		src = o.router.Detect(q.Text).Language
	}
	dst := q.TranslateTo
	if !dst.Supported() {
		dst = models.PivotLanguage
	}

	log := o.logger.With(zap.String("src", string(src)), zap.String("dst", string(dst)))
	key := cache.Key(q.Text, src, dst)

	// CACHE_CHECK. A hit short-circuits the whole pipeline: cached
	// payloads are already in the requested output language. An outage
	// degrades to a miss.
	cached, err := offload(ctx, o.pool, o.opts.CacheTimeout, func(ctx context.Context) (*models.AnswerPayload, error) {
		return o.cache.Get(ctx, key)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("cache lookup failed, treating as miss", zap.Error(err))
	} else if cached != nil {
		log.Info("cache hit", zap.Duration("latency", time.Since(started)))
		return emit(models.StreamEvent{GeneratedAnswer: cached.GeneratedAnswer, Status: cached.Status})
	}

	needsIn, needsOut := o.router.ResolvePath(src, dst)

	// TRANSLATE_IN. Skipped when the source is already the pivot.
	pivotText := q.Text
	if needsIn {
		pivotText, err = offload(ctx, o.pool, o.opts.TranslateTimeout, func(ctx context.Context) (string, error) {
			return o.translator.Translate(ctx, q.Text, models.TranslationPair{From: src, To: models.PivotLanguage})
		})
		if err != nil {
			return o.fail(ctx, emit, StageTranslateIn, err)
		}
	}

	// EMBED
	vec, err := offload(ctx, o.pool, o.opts.EmbedTimeout, func(ctx context.Context) ([]float32, error) {
		return o.embedder.Embed(ctx, pivotText)
	})
	if err != nil {
		return o.fail(ctx, emit, StageEmbed, err)
	}

	// RETRIEVE
	result, err := offload(ctx, o.pool, o.opts.RetrieveTimeout, func(ctx context.Context) (models.RetrievalResult, error) {
		return o.retriever.Search(ctx, vec, o.opts.TopK)
	})
	if err != nil {
		return o.fail(ctx, emit, StageRetrieve, err)
	}

	// GENERATE. An empty retrieval still generates, with an explicit
	// no-context instruction in the prompt.
	prompt := BuildPrompt(pivotText, result, o.opts.MaxContextChars)
	answer, err := offload(ctx, o.pool, o.opts.GenerateTimeout, func(ctx context.Context) (string, error) {
		return o.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return o.fail(ctx, emit, StageGenerate, err)
	}

	// TRANSLATE_OUT. Skipped when the requested output is the pivot.
	if needsOut {
		answer, err = offload(ctx, o.pool, o.opts.TranslateTimeout, func(ctx context.Context) (string, error) {
			return o.translator.Translate(ctx, answer, models.TranslationPair{From: models.PivotLanguage, To: dst})
		})
		if err != nil {
			return o.fail(ctx, emit, StageTranslateOut, err)
		}
	}

	// CACHE_WRITE. Write failures are logged and swallowed; the answer
	// is delivered regardless.
	payload := &models.AnswerPayload{GeneratedAnswer: answer, Status: models.StatusComplete}
	if _, err := offload(ctx, o.pool, o.opts.CacheTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.cache.Set(ctx, key, payload, o.opts.CacheTTL)
	}); err != nil && ctx.Err() == nil {
		log.Warn("cache write failed", zap.Error(err))
	}

	log.Info("query pipeline complete",
		zap.Int("contexts", len(result)),
		zap.Duration("latency", time.Since(started)))

	return emit(models.StreamEvent{GeneratedAnswer: answer, Status: models.StatusComplete})
}

// fail transitions to the ERROR terminal state: one structured error
// object ends the stream, partial results are never emitted. A cancelled
// client gets nothing; the work is simply abandoned.
func (o *Orchestrator) fail(ctx context.Context, emit EmitFunc, stage Stage, err error) error {
	if ctx.Err() != nil {
		o.logger.Info("request cancelled", zap.String("stage", string(stage)))
		return ctx.Err()
	}

	o.logger.Error("pipeline stage failed", zap.String("stage", string(stage)), zap.Error(err))

	if emitErr := emit(models.StreamEvent{Error: publicError(stage, err), Status: models.StatusError}); emitErr != nil {
		return emitErr
	}
	return err
}

// publicError maps an internal stage failure to the client-facing message.
func publicError(stage Stage, err error) string {
	if errors.Is(err, models.ErrModelUnavailable) {
		return "Model unavailable, please retry"
	}
	switch stage {
	case StageTranslateIn, StageTranslateOut:
		return "Translation failed"
	case StageEmbed:
		return "Embedding failed"
	case StageRetrieve:
		return "Retrieval failed"
	case StageGenerate:
		return "Generation failed"
	default:
		return "Internal error"
	}
}

type stageResult[T any] struct {
	value T
	err   error
}

// offload runs fn on the worker pool and waits for its result or the
// context. On timeout or cancellation the in-flight call runs to
// completion on the pool and its result is discarded through the
// buffered channel.
func offload[T any](ctx context.Context, pool *ants.Pool, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ch := make(chan stageResult[T], 1)
	if err := pool.Submit(func() {
		value, err := fn(ctx)
		ch <- stageResult[T]{value: value, err: err}
	}); err != nil {
		return zero, err
	}

	select {
	case res := <-ch:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
