package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/petasbytes/go-chatbot/internal/metrics"
	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

// DefaultMaxRoundTrips bounds tool round-trips per turn.
const DefaultMaxRoundTrips = 8

// ErrTooManyRoundTrips is returned when the model keeps requesting tools past the bound.
var ErrTooManyRoundTrips = errors.New("too many tool round-trips in one turn")

// ModelClient produces the next reply for a history ending in a user or tool message.
type ModelClient interface {
	Complete(ctx context.Context, history []memory.Message, defs []tools.ToolDefinition) (provider.Reply, error)
}

// ToolInvoker resolves a tool call into its result message.
type ToolInvoker interface {
	Definitions() []tools.ToolDefinition
	Invoke(ctx context.Context, call memory.ToolCall) memory.Message
}

type Runner struct {
	Model         ModelClient
	Tools         ToolInvoker
	Store         memory.Store
	MaxRoundTrips int
	Logger        *slog.Logger
}

func New(model ModelClient, inv ToolInvoker, store memory.Store, maxRoundTrips int, logger *slog.Logger) *Runner {
	if maxRoundTrips <= 0 {
		maxRoundTrips = DefaultMaxRoundTrips
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Model: model, Tools: inv, Store: store, MaxRoundTrips: maxRoundTrips, Logger: logger}
}

// Result describes a completed turn.
type Result struct {
	Answer     string
	RoundTrips int
	ToolCalls  int
	// Path lists every state entered, starting with StateAwaitingModel.
	Path []State
	// Messages are the messages committed for this turn, user message first.
	Messages []memory.Message
}

// RunTurn appends input to the session and runs the model/tool loop to a final answer.
func (r *Runner) RunTurn(ctx context.Context, sessionID, input string) (*Result, error) {
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = "turn-" + uuid.NewString()
	}
	ctx = telemetry.WithSessionID(telemetry.WithTurnID(ctx, turnID), sessionID)
	log := r.Logger.With("session_id", sessionID, "turn_id", turnID)

	history, err := r.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var defs []tools.ToolDefinition
	if r.Tools != nil {
		defs = r.Tools.Definitions()
	}

	// staged holds this turn's messages until commit.
	staged := []memory.Message{memory.NewUserMessage(input)}
	res := &Result{Path: []State{StateAwaitingModel}}
	transition := func(to State) {
		log.Debug("turn transition", "from", res.Path[len(res.Path)-1], "to", to)
		res.Path = append(res.Path, to)
	}

	for {
		conv := make([]memory.Message, 0, len(history)+len(staged))
		conv = append(append(conv, history...), staged...)

		reply, err := r.Model.Complete(ctx, conv, defs)
		if err != nil {
			return nil, err
		}

		staged = append(staged, reply.AssistantMessage())
		switch v := reply.(type) {
		case provider.FinalAnswer:
			if err := r.Store.Append(ctx, sessionID, staged...); err != nil {
				return nil, fmt.Errorf("save session: %w", err)
			}
			transition(StateDone)
			res.Answer = v.Text()
			res.Messages = staged
			telemetry.EmitTurnCompleted(ctx, metrics.CountTurn(input, res.Answer, res.RoundTrips, res.ToolCalls))
			log.Info("turn completed", "round_trips", res.RoundTrips, "tool_calls", res.ToolCalls)
			return res, nil

		case provider.ToolRequest:
			if res.RoundTrips >= r.MaxRoundTrips {
				log.Warn("round-trip limit reached", "limit", r.MaxRoundTrips)
				return nil, fmt.Errorf("%w (limit %d)", ErrTooManyRoundTrips, r.MaxRoundTrips)
			}
			if r.Tools == nil {
				return nil, fmt.Errorf("model requested %d tool call(s) but no tools are configured", len(v.Calls))
			}
			transition(StateAwaitingTools)
			for _, call := range v.Calls {
				staged = append(staged, r.Tools.Invoke(ctx, call))
			}
			res.RoundTrips++
			res.ToolCalls += len(v.Calls)
			transition(StateAwaitingModel)

		default:
			return nil, fmt.Errorf("unexpected reply type %T", reply)
		}
	}
}
