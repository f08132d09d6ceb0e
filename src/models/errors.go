package models

import "errors"

// Pipeline error taxonomy. Soft errors (detection, cache) are absorbed
// locally and the pipeline proceeds with a sane default; hard errors abort
// the current request only.
var (
	// ErrModelUnavailable means a model failed to load or initialize.
	// The failure is not cached; the next call retries the load.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrDetectionFailed is soft: the router defaults to the pivot
	// language and never surfaces it to the caller.
	ErrDetectionFailed = errors.New("language detection failed")

	// ErrTranslationFailed is stage-fatal.
	ErrTranslationFailed = errors.New("translation failed")

	// ErrRetrievalUnavailable is stage-fatal: without retrieval there is
	// no grounded generation.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationFailed is stage-fatal and never retried.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrCacheUnavailable is soft: a cache outage degrades to cache-miss
	// behavior, a write failure is logged and swallowed.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrUnsupportedPair means no translation model exists for a
	// language pair. Detected at startup validation, before any fetch.
	ErrUnsupportedPair = errors.New("unsupported translation pair")
)
