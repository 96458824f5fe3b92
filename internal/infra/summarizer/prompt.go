package summarizer

import "strings"

// instruction is the request sent along with every note.
const instruction = "Summarize this note."

const systemPrompt = "You help the author of a personal knowledge base refresh their memory. " +
	"Summarize the note you are given in a few sentences, in the language of the note. " +
	"Reply with the summary only."

// buildPrompt stuffs every chunk of a note into one user message.
func buildPrompt(chunks []string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(chunks, "\n\n"))
	return b.String()
}
