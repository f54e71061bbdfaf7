package summarizer

import "fmt"

const summaryPrompt = `You are a professional summarization assistant.

TASK:
Generate a clean, well-structured summary.

REQUIREMENTS:
- Output ONLY the summary.
- Do NOT repeat sentences from the original text.
- Do NOT include separators, tables, or special characters.
- Use a concise bullet list.
- Preserve the original language.

TEXT START
%s
TEXT END

SUMMARY:`

// BuildPrompt embeds the transcript verbatim between the TEXT delimiters.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(summaryPrompt, transcript)
}
