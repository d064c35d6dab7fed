package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/go-chatbot/internal/metrics"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

var (
	// ErrServiceUnavailable wraps every failure talking to the Messages API.
	ErrServiceUnavailable = errors.New("model service unavailable")
	// ErrInvalidHistory is returned when history is empty or does not end with a user or tool message.
	ErrInvalidHistory = errors.New("history must end with a user or tool message")
)

type Settings struct {
	Model        anthropic.Model
	MaxTokens    int64
	SystemPrompt string
}

type Client struct {
	api      *anthropic.Client
	settings Settings
	logger   *slog.Logger
}

func New(api *anthropic.Client, s Settings, logger *slog.Logger) *Client {
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, settings: s, logger: logger}
}

func (c *Client) Model() anthropic.Model { return c.settings.Model }

// Complete sends the full history with defs bound as tools and classifies the reply.
func (c *Client) Complete(ctx context.Context, history []memory.Message, defs []tools.ToolDefinition) (Reply, error) {
	if len(history) == 0 {
		return nil, ErrInvalidHistory
	}
	if last := history[len(history)-1].Role; last != memory.RoleUser && last != memory.RoleTool {
		return nil, fmt.Errorf("%w: last role is %q", ErrInvalidHistory, last)
	}

	params := anthropic.MessageNewParams{
		Model:     c.settings.Model,
		MaxTokens: c.settings.MaxTokens,
		Messages:  toParams(history),
	}
	if c.settings.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.settings.SystemPrompt}}
	}
	if len(defs) > 0 {
		params.Tools = toolParams(defs)
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()
	msg, err := c.api.Messages.New(ctx, params)
	fields := map[string]any{
		"turn_id":     turnID,
		"model":       string(c.settings.Model),
		"messages":    len(params.Messages),
		"history_est": metrics.EstimateTokens(history),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["outcome"] = "error"
		fields["error"] = classify(err)
		telemetry.Emit("model_call", fields)
		c.logger.Warn("model call failed", "turn_id", turnID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	reply := fromMessage(msg)
	outcome := "final"
	if _, ok := reply.(ToolRequest); ok {
		outcome = "tool_request"
	}
	fields["outcome"] = outcome
	fields["error"] = nil
	fields["stop_reason"] = string(msg.StopReason)
	fields["input_tokens"] = msg.Usage.InputTokens
	fields["output_tokens"] = msg.Usage.OutputTokens
	telemetry.Emit("model_call", fields)
	c.logger.Debug("model call", "turn_id", turnID, "outcome", outcome, "stop_reason", msg.StopReason)
	return reply, nil
}

// classify maps an error to a short, payload-free label for telemetry.
func classify(err error) string {
	var apiErr *anthropic.Error
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	default:
		return "transport"
	}
}
