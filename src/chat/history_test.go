package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krishivaani/krishivaani/src/store"
)

func TestBuildConversationContext(t *testing.T) {
	messages := []store.ChatMessage{
		{Message: "How to grow rice?", Response: "Start with a puddled nursery."},
		{Message: "When to transplant?", Response: "After 21 to 25 days."},
	}

	ctx := BuildConversationContext(messages)

	assert.Contains(t, ctx, "Previous conversation:")
	assert.Contains(t, ctx, "user: How to grow rice?")
	assert.Contains(t, ctx, "assistant: After 21 to 25 days.")
}

func TestBuildConversationContextEmpty(t *testing.T) {
	assert.Empty(t, BuildConversationContext(nil))
}

func TestComposeQuestion(t *testing.T) {
	assert.Equal(t, "How deep to plant?", ComposeQuestion("", "How deep to plant?"))

	composed := ComposeQuestion("Previous conversation:\nuser: q\nassistant: a\n", "How deep to plant?")
	assert.Contains(t, composed, "Previous conversation:")
	assert.Contains(t, composed, "Current question: How deep to plant?")
}
