package models

import "time"

// Language is an ISO 639-1 code from the supported set, or "unknown".
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangTelugu  Language = "te"
	LangUnknown Language = "unknown"

	// PivotLanguage is the language all retrieval and generation run in.
	PivotLanguage = LangEnglish
)

// SupportedLanguages is the closed set the service accepts.
var SupportedLanguages = []Language{LangEnglish, LangHindi, LangTelugu}

func (l Language) Supported() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// Query is a single question as received from the client. Language and
// TranslateTo are optional; an absent Language triggers detection.
type Query struct {
	Text        string   `json:"text" binding:"required"`
	Language    Language `json:"lang,omitempty"`
	TranslateTo Language `json:"translate_to,omitempty"`
}

// DetectedLanguage is the result of language identification.
type DetectedLanguage struct {
	Language    Language `json:"language"`
	IsSupported bool     `json:"is_supported"`
}

// TranslationPair identifies a directional translation model.
type TranslationPair struct {
	From Language
	To   Language
}

// Key returns the ModelRegistry key for this pair.
func (p TranslationPair) Key() string {
	return "translate:" + string(p.From) + "-" + string(p.To)
}

// KnowledgeEntry is one question/answer row from the knowledge base,
// with the similarity score attached when it comes out of retrieval.
// Entries are immutable after ingestion.
type KnowledgeEntry struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Language Language `json:"language"`
	Source   string   `json:"source"`
	Score    float64  `json:"score"`
}

// RetrievalResult is ordered by descending similarity, ties broken by
// ascending entry id.
type RetrievalResult []KnowledgeEntry

// AnswerPayload is the final answer object stored in the cache and emitted
// as the terminal stream line. Cached payloads are always already in the
// client's requested output language.
type AnswerPayload struct {
	GeneratedAnswer string `json:"generated_answer"`
	Status          string `json:"status"`
}

// StreamEvent is one newline-delimited JSON object of the response stream.
// Exactly one terminal event is emitted per request: status "complete" with
// a generated answer, or status "error" with an error message.
type StreamEvent struct {
	GeneratedAnswer string `json:"generated_answer,omitempty"`
	Error           string `json:"error,omitempty"`
	Status          string `json:"status"`
}

const (
	StatusComplete = "complete"
	StatusError    = "error"
)

// Chat types for conversational QA backed by the same pipeline.

type ChatRequest struct {
	SessionID   string   `json:"session_id,omitempty"` // if empty, a new session is created
	Message     string   `json:"message" binding:"required"`
	Language    Language `json:"lang,omitempty"`
	TranslateTo Language `json:"translate_to,omitempty"`
}

type ChatResponse struct {
	SessionID    string        `json:"session_id"`
	Response     string        `json:"response"`
	Language     Language      `json:"language"`
	Latency      time.Duration `json:"latency"`
	MessageCount int           `json:"message_count"`
	Timestamp    time.Time     `json:"timestamp"`
}
