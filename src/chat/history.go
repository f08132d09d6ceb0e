package chat

import (
	"fmt"
	"strings"

	"github.com/krishivaani/krishivaani/src/store"
)

// maxContextWindow bounds how many past turns feed the next question.
const maxContextWindow = 10

// ContextWindow returns the number of past turns to load for a session.
func ContextWindow() int { return maxContextWindow }

// BuildConversationContext renders past turns into a prefix for the next
// pipeline question, so follow-ups resolve against earlier answers.
func BuildConversationContext(messages []store.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range messages {
		b.WriteString(fmt.Sprintf("user: %s\nassistant: %s\n", msg.Message, msg.Response))
	}
	return b.String()
}

// ComposeQuestion prefixes a new message with its conversation context.
func ComposeQuestion(history string, message string) string {
	if history == "" {
		return message
	}
	return history + "\nCurrent question: " + message
}
