package metrics

import (
	"unicode/utf8"

	"github.com/petasbytes/go-chatbot/memory"
)

// Fixed per-block overhead for deterministic estimates; changing this requires updating the guard test.
const blockOverhead = 4

// EstimateTokens is a deterministic, provider-free size estimate for a history.
// Rules:
//   - text content: rune count plus one block overhead
//   - each tool call: rune count of name and arguments plus one block overhead
//   - tool results: rune count of the content plus one block overhead
//
// It is used for telemetry only; history is never trimmed against it.
func EstimateTokens(history []memory.Message) int {
	total := 0
	for _, m := range history {
		total += EstimateMessageTokens(m)
	}
	return total
}

func EstimateMessageTokens(m memory.Message) int {
	total := 0
	if m.Content != "" || m.Role != memory.RoleAssistant {
		total += utf8.RuneCountInString(m.Content) + blockOverhead
	}
	for _, c := range m.ToolCalls {
		total += utf8.RuneCountInString(c.Name) + utf8.RuneCount(c.Arguments) + blockOverhead
	}
	return total
}
