package telemetry

import (
	"context"

	"github.com/petasbytes/go-chatbot/internal/metrics"
)

// EmitTurnCompleted records local text features for a finished turn.
func EmitTurnCompleted(ctx context.Context, f metrics.TurnFeatures) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	sessionID, _ := SessionIDFromContext(ctx)
	Emit("turn_completed", map[string]any{
		"turn_id":          turnID,
		"session_id":       sessionID,
		"features_version": "2",
		"round_trips":      f.RoundTrips,
		"tool_calls":       f.ToolCalls,
		"user":             textFields(f.User),
		"answer":           textFields(f.Answer),
	})
}

func textFields(f metrics.Features) map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}
