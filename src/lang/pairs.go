package lang

import (
	"fmt"

	"github.com/krishivaani/krishivaani/src/models"
)

// pairModels is the closed mapping from directional language pair to the
// translation model serving it. The mul variants cover Telugu, which has
// no dedicated opus-mt model in either direction.
var pairModels = map[models.TranslationPair]string{
	{From: models.LangHindi, To: models.LangEnglish}:  "Helsinki-NLP/opus-mt-hi-en",
	{From: models.LangTelugu, To: models.LangEnglish}: "Helsinki-NLP/opus-mt-mul-en",
	{From: models.LangEnglish, To: models.LangHindi}:  "Helsinki-NLP/opus-mt-en-hi",
	{From: models.LangEnglish, To: models.LangTelugu}: "Helsinki-NLP/opus-mt-en-mul",
}

// ModelForPair resolves the translation model name for a pair.
func ModelForPair(pair models.TranslationPair) (string, error) {
	name, ok := pairModels[pair]
	if !ok {
		return "", fmt.Errorf("%w: %s-%s", models.ErrUnsupportedPair, pair.From, pair.To)
	}
	return name, nil
}

// SupportedPairs returns every pair the table can translate.
func SupportedPairs() []models.TranslationPair {
	pairs := make([]models.TranslationPair, 0, len(pairModels))
	for p := range pairModels {
		pairs = append(pairs, p)
	}
	return pairs
}

// ValidatePairs checks at startup that every supported non-pivot language
// has a model in both directions, so unsupported-pair errors surface
// before any model fetch is attempted.
func ValidatePairs() error {
	for _, l := range models.SupportedLanguages {
		if l == models.PivotLanguage {
			continue
		}
		if _, err := ModelForPair(models.TranslationPair{From: l, To: models.PivotLanguage}); err != nil {
			return err
		}
		if _, err := ModelForPair(models.TranslationPair{From: models.PivotLanguage, To: l}); err != nil {
			return err
		}
	}
	return nil
}
