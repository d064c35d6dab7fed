package runner_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/internal/runner"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

// scriptedModel returns replies in order and records every history it was sent.
type scriptedModel struct {
	replies []func(history []memory.Message) (provider.Reply, error)
	seen    [][]memory.Message
}

func (m *scriptedModel) Complete(ctx context.Context, history []memory.Message, defs []tools.ToolDefinition) (provider.Reply, error) {
	m.seen = append(m.seen, history)
	i := len(m.seen) - 1
	if i >= len(m.replies) {
		return nil, fmt.Errorf("unexpected model call #%d", i+1)
	}
	return m.replies[i](history)
}

func final(text string) func([]memory.Message) (provider.Reply, error) {
	return func([]memory.Message) (provider.Reply, error) {
		return provider.FinalAnswer{Message: memory.NewAssistantMessage(text)}, nil
	}
}

func toolCalls(ids ...string) func([]memory.Message) (provider.Reply, error) {
	return func([]memory.Message) (provider.Reply, error) {
		calls := make([]memory.ToolCall, len(ids))
		for i, id := range ids {
			calls[i] = memory.ToolCall{ID: id, Name: "lookup", Arguments: json.RawMessage(`{"id":"` + id + `"}`)}
		}
		return provider.ToolRequest{Message: memory.NewAssistantMessage("", calls...), Calls: calls}, nil
	}
}

func failing(err error) func([]memory.Message) (provider.Reply, error) {
	return func([]memory.Message) (provider.Reply, error) { return nil, err }
}

func lookupTool() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "lookup",
		InputSchema: tools.GenerateSchema[struct{}](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in struct{ ID string }
			_ = json.Unmarshal(input, &in)
			return "result-" + in.ID, nil
		},
	}
}

func newRunner(m runner.ModelClient, store memory.Store, maxRoundTrips int) *runner.Runner {
	return runner.New(m, tools.NewInvoker([]tools.ToolDefinition{lookupTool()}, nil), store, maxRoundTrips, nil)
}

func samePath(got, want []runner.State) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRunTurn_NoTools_SingleModelCall(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){final("hello")}}

	res, err := newRunner(m, store, 0).RunTurn(ctx, "s", "hi")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Answer != "hello" {
		t.Fatalf("answer = %q", res.Answer)
	}
	if len(m.seen) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(m.seen))
	}
	if want := []runner.State{runner.StateAwaitingModel, runner.StateDone}; !samePath(res.Path, want) {
		t.Fatalf("path = %v, want %v", res.Path, want)
	}
	hist, _ := store.Get(ctx, "s")
	if len(hist) != 2 || hist[0].Role != memory.RoleUser || hist[1].Role != memory.RoleAssistant {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestRunTurn_OneToolCall_TwoModelCalls(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){toolCalls("c1"), final("done")}}

	res, err := newRunner(m, store, 0).RunTurn(ctx, "s", "look it up")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(m.seen) != 2 {
		t.Fatalf("expected two model calls, got %d", len(m.seen))
	}
	// The second call sees exactly one new tool result after the tool request.
	first, second := m.seen[0], m.seen[1]
	if len(second)-len(first) != 2 {
		t.Fatalf("expected request+result between calls, got %d new messages", len(second)-len(first))
	}
	if r := second[len(second)-1]; r.Role != memory.RoleTool || r.ToolCallID != "c1" || r.Content != "result-c1" {
		t.Fatalf("unexpected tool result: %+v", r)
	}
	want := []runner.State{runner.StateAwaitingModel, runner.StateAwaitingTools, runner.StateAwaitingModel, runner.StateDone}
	if !samePath(res.Path, want) {
		t.Fatalf("path = %v, want %v", res.Path, want)
	}
	if res.RoundTrips != 1 || res.ToolCalls != 1 {
		t.Fatalf("counters: %+v", res)
	}
	hist, _ := store.Get(ctx, "s")
	if len(hist) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(hist))
	}
}

func TestRunTurn_ToolResultsFollowRequestOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){toolCalls("z", "a", "m"), final("ok")}}

	if _, err := newRunner(m, store, 0).RunTurn(ctx, "s", "many"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	hist, _ := store.Get(ctx, "s")
	// user, assistant(request), tool z, tool a, tool m, assistant(final)
	if len(hist) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(hist))
	}
	for i, id := range []string{"z", "a", "m"} {
		got := hist[2+i]
		if got.Role != memory.RoleTool || got.ToolCallID != id {
			t.Fatalf("position %d: got %+v want tool result for %q", 2+i, got, id)
		}
	}
}

func TestRunTurn_HistoryIsCumulativeAcrossTurns(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){
		// turn 1: no tools
		final("one"),
		// turn 2: two round-trips
		toolCalls("a"), toolCalls("b"), final("two"),
		// turn 3
		final("three"),
	}}
	r := newRunner(m, store, 0)

	wantLen := 0
	for i, tc := range []struct {
		input      string
		roundTrips int
	}{{"first", 0}, {"second", 2}, {"third", 0}} {
		calls := len(m.seen)
		res, err := r.RunTurn(ctx, "s", tc.input)
		if err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
		if res.RoundTrips != tc.roundTrips {
			t.Fatalf("turn %d: round trips = %d want %d", i+1, res.RoundTrips, tc.roundTrips)
		}
		// The first model call of the turn sees every prior message plus the new user message.
		if got := len(m.seen[calls]); got != wantLen+1 {
			t.Fatalf("turn %d: model saw %d messages, want %d", i+1, got, wantLen+1)
		}
		wantLen += 2 + 2*tc.roundTrips
		hist, _ := store.Get(ctx, "s")
		if len(hist) != wantLen {
			t.Fatalf("turn %d: history length %d want %d", i+1, len(hist), wantLen)
		}
	}
	if m.seen[len(m.seen)-1][0].Content != "first" {
		t.Fatal("history was truncated: first user message missing from final call")
	}
}

func TestRunTurn_SessionsDoNotShareHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){final("a"), final("b")}}
	r := newRunner(m, store, 0)

	_, _ = r.RunTurn(ctx, "one", "hi from one")
	_, _ = r.RunTurn(ctx, "two", "hi from two")
	if len(m.seen[1]) != 1 {
		t.Fatalf("session two saw %d messages, want 1", len(m.seen[1]))
	}
}

func TestRunTurn_RoundTripLimit_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){toolCalls("a"), toolCalls("b"), toolCalls("c")}}

	_, err := newRunner(m, store, 2).RunTurn(ctx, "s", "loop forever")
	if !errors.Is(err, runner.ErrTooManyRoundTrips) {
		t.Fatalf("expected ErrTooManyRoundTrips, got %v", err)
	}
	if len(m.seen) != 3 {
		t.Fatalf("expected 3 model calls before giving up, got %d", len(m.seen))
	}
	hist, _ := store.Get(ctx, "s")
	if len(hist) != 0 {
		t.Fatalf("failed turn must not be committed, got %d messages", len(hist))
	}
}

func TestRunTurn_ModelError_RollsBackAndPropagates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	_ = store.Append(ctx, "s", memory.NewUserMessage("earlier"), memory.NewAssistantMessage("reply"))

	boom := fmt.Errorf("%w: 529", provider.ErrServiceUnavailable)
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){toolCalls("a"), failing(boom)}}

	_, err := newRunner(m, store, 0).RunTurn(ctx, "s", "now fail")
	if !errors.Is(err, provider.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	hist, _ := store.Get(ctx, "s")
	if len(hist) != 2 {
		t.Fatalf("expected prior history untouched (2), got %d", len(hist))
	}
}

func TestRunTurn_UnknownToolBecomesErrorResult(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	unknown := func([]memory.Message) (provider.Reply, error) {
		call := memory.ToolCall{ID: "x1", Name: "nope"}
		return provider.ToolRequest{Message: memory.NewAssistantMessage("", call), Calls: []memory.ToolCall{call}}, nil
	}
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){unknown, final("sorry")}}

	res, err := newRunner(m, store, 0).RunTurn(ctx, "s", "use a missing tool")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Answer != "sorry" {
		t.Fatalf("answer = %q", res.Answer)
	}
	if r := m.seen[1][len(m.seen[1])-1]; !r.IsError || r.ToolCallID != "x1" {
		t.Fatalf("expected error tool result for x1, got %+v", r)
	}
}

func TestRunTurn_CommitsEachReplyAssistantMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	m := &scriptedModel{replies: []func([]memory.Message) (provider.Reply, error){toolCalls("c1", "c2"), final("done")}}

	res, err := newRunner(m, store, 0).RunTurn(ctx, "s", "two lookups")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	hist, _ := store.Get(ctx, "s")
	if len(hist) != len(res.Messages) || len(hist) != 5 {
		t.Fatalf("committed %d messages, result lists %d", len(hist), len(res.Messages))
	}
	req := hist[1]
	if req.Role != memory.RoleAssistant || len(req.ToolCalls) != 2 || req.ToolCalls[1].ID != "c2" {
		t.Fatalf("tool request message not committed as sent: %+v", req)
	}
	if last := hist[4]; last.Role != memory.RoleAssistant || last.Content != "done" || last.HasToolCalls() {
		t.Fatalf("final answer message not committed as sent: %+v", last)
	}
}
