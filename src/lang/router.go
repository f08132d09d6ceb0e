package lang

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"

	"github.com/krishivaani/krishivaani/src/models"
)

// Router determines a query's source language and the translation path
// to and from the pivot language. Detection is advisory, not gating: any
// detector failure or ambiguous result falls back to the pivot.
type Router struct {
	detector lingua.LanguageDetector
	logger   *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Hindi, lingua.Telugu).
		Build()

	return &Router{
		detector: detector,
		logger:   logger,
	}
}

// Detect identifies the language of text. It fails soft: empty input or an
// undecidable result defaults to English rather than aborting the pipeline.
func (r *Router) Detect(text string) models.DetectedLanguage {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DetectedLanguage{Language: models.PivotLanguage, IsSupported: true}
	}

	detected, ok := r.detector.DetectLanguageOf(text)
	if !ok {
		r.logger.Debug("language detection inconclusive, defaulting to pivot")
		return models.DetectedLanguage{Language: models.PivotLanguage, IsSupported: true}
	}

	lang := fromLingua(detected)
	if !lang.Supported() {
		r.logger.Debug("detected unsupported language, defaulting to pivot",
			zap.String("detected", detected.String()))
		return models.DetectedLanguage{Language: models.PivotLanguage, IsSupported: false}
	}

	return models.DetectedLanguage{Language: lang, IsSupported: true}
}

// ResolvePath reports which translation legs are needed. Retrieval and
// generation always run in the pivot language.
func (r *Router) ResolvePath(detected, requested models.Language) (needsIn bool, needsOut bool) {
	needsIn = detected != models.PivotLanguage && detected.Supported()
	needsOut = requested != models.PivotLanguage && requested.Supported()
	return needsIn, needsOut
}

func fromLingua(l lingua.Language) models.Language {
	switch l {
	case lingua.English:
		return models.LangEnglish
	case lingua.Hindi:
		return models.LangHindi
	case lingua.Telugu:
		return models.LangTelugu
	default:
		return models.LangUnknown
	}
}
