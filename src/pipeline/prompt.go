package pipeline

import (
	"fmt"
	"strings"

	"github.com/krishivaani/krishivaani/src/models"
	"github.com/krishivaani/krishivaani/src/utils"
)

const noContextInstruction = "No relevant context was found in the knowledge base. " +
	"Say so briefly, then give the best general agricultural guidance you can."

// BuildPrompt assembles the generation prompt from the retrieved contexts
// and the pivot-language question, bounded by maxContextChars. Zero
// retrieved entries produce an explicit no-context instruction instead of
// failing the pipeline.
func BuildPrompt(question string, contexts models.RetrievalResult, maxContextChars int) string {
	var b strings.Builder
	b.WriteString("You are an agricultural assistant for farmers. Answer the question using the context below.\n\n")

	if len(contexts) == 0 {
		b.WriteString(noContextInstruction)
		b.WriteString("\n")
	} else {
		b.WriteString("Context:\n")
		total := 0
		for _, entry := range contexts {
			chunk := fmt.Sprintf("Q: %s\nA: %s\n", entry.Question, entry.Answer)
			if maxContextChars > 0 && total+len(chunk) > maxContextChars {
				if total == 0 {
					// Always carry at least the top entry, truncated.
					b.WriteString(utils.TruncateToChars(chunk, maxContextChars))
					b.WriteString("\n")
				}
				break
			}
			b.WriteString(chunk)
			total += len(chunk)
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}
