package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/go-chatbot/internal/metrics"
	"github.com/petasbytes/go-chatbot/memory"
)

func TestEstimateMessageTokens(t *testing.T) {
	call := memory.ToolCall{ID: "t1", Name: "web_search", Arguments: json.RawMessage(`{"q":"é"}`)}
	cases := []struct {
		name string
		msg  memory.Message
		want int
	}{
		{"user text", memory.NewUserMessage("héllo"), 5 + 4},
		{"empty user still costs overhead", memory.NewUserMessage(""), 4},
		{"assistant tool call only", memory.NewAssistantMessage("", call), 10 + 9 + 4},
		{"assistant text and call", memory.NewAssistantMessage("ok", call), 2 + 4 + 10 + 9 + 4},
		{"tool result", memory.NewToolMessage("t1", "[]", false), 2 + 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := metrics.EstimateMessageTokens(tc.msg); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestEstimateTokens_SumsHistory(t *testing.T) {
	h := []memory.Message{memory.NewUserMessage("abc"), memory.NewAssistantMessage("de")}
	if got := metrics.EstimateTokens(h); got != (3+4)+(2+4) {
		t.Fatalf("got %d", got)
	}
	if got := metrics.EstimateTokens(nil); got != 0 {
		t.Fatalf("empty history: got %d", got)
	}
}
