package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/petasbytes/go-chatbot/internal/telemetry"
	"github.com/petasbytes/go-chatbot/memory"
)

// Generic telemetry labels; tool error text never reaches events.
var (
	errToolNotFound = errors.New("tool not found")
	errToolFailed   = errors.New("tool error")
)

// Invoker executes tool calls against a fixed set of definitions.
type Invoker struct {
	defs   []ToolDefinition
	byName map[string]int
	logger *slog.Logger
}

func NewInvoker(defs []ToolDefinition, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]int, len(defs))
	for i, d := range defs {
		byName[d.Name] = i
	}
	return &Invoker{defs: defs, byName: byName, logger: logger}
}

// Definitions returns the tool set advertised to the model.
func (inv *Invoker) Definitions() []ToolDefinition {
	return inv.defs
}

// Invoke runs call synchronously and always returns one tool message correlated by call id.
// Tool failures are encoded in the message content with IsError set.
func (inv *Invoker) Invoke(ctx context.Context, call memory.ToolCall) memory.Message {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	log := inv.logger.With("tool", call.Name, "call_id", call.ID, "turn_id", turnID)

	// Raw payloads never reach telemetry; only sizes and a generic error string.
	emit := func(start time.Time, outputSize int, err error) {
		telemetry.Emit("tool_exec", map[string]any{
			"tool_name":   call.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(call.Arguments),
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       telemetry.ErrorField(err),
		})
	}

	start := time.Now()
	i, ok := inv.byName[call.Name]
	if !ok {
		emit(start, 0, errToolNotFound)
		log.Warn("model requested unknown tool")
		return memory.NewToolMessage(call.ID, ToolError{Code: CodeToolNotFound, Message: "tool not found: " + call.Name}.Error(), true)
	}

	input := call.Arguments
	if len(input) == 0 {
		input = []byte("{}")
	}
	out, err := inv.defs[i].Function(ctx, input)
	if err != nil {
		emit(start, 0, errToolFailed)
		log.Warn("tool failed", "err", err)
		return memory.NewToolMessage(call.ID, err.Error(), true)
	}
	emit(start, len(out), nil)
	log.Debug("tool completed", "duration", time.Since(start), "output_size", len(out))
	return memory.NewToolMessage(call.ID, out, false)
}
