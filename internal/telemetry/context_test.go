package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/petasbytes/go-chatbot/internal/telemetry"
)

type idAccessors struct {
	name string
	with func(context.Context, string) context.Context
	from func(context.Context) (string, bool)
}

var accessors = []idAccessors{
	{"turn", telemetry.WithTurnID, telemetry.TurnIDFromContext},
	{"session", telemetry.WithSessionID, telemetry.SessionIDFromContext},
}

func TestIDs_ReadBack(t *testing.T) {
	for _, a := range accessors {
		t.Run(a.name, func(t *testing.T) {
			cases := []struct {
				desc   string
				ctx    context.Context
				want   string
				wantOK bool
			}{
				{"set", a.with(context.Background(), "id-1"), "id-1", true},
				{"empty id reads as missing", a.with(context.Background(), ""), "", false},
				{"never set", context.Background(), "", false},
				{"last write wins", a.with(a.with(context.Background(), "old"), "new"), "new", true},
			}
			for _, tc := range cases {
				got, ok := a.from(tc.ctx)
				if got != tc.want || ok != tc.wantOK {
					t.Errorf("%s: got %q,%v want %q,%v", tc.desc, got, ok, tc.want, tc.wantOK)
				}
			}
		})
	}
}

func TestIDs_NilParentUsesBackground(t *testing.T) {
	for _, a := range accessors {
		ctx := a.with(nil, "x")
		if got, ok := a.from(ctx); !ok || got != "x" {
			t.Errorf("%s: got %q,%v", a.name, got, ok)
		}
	}
}

func TestIDs_TurnAndSessionAreIndependent(t *testing.T) {
	ctx := telemetry.WithSessionID(telemetry.WithTurnID(context.Background(), "t1"), "s1")
	if tid, ok := telemetry.TurnIDFromContext(ctx); !ok || tid != "t1" {
		t.Fatalf("turn id: got %q,%v", tid, ok)
	}
	if sid, ok := telemetry.SessionIDFromContext(ctx); !ok || sid != "s1" {
		t.Fatalf("session id: got %q,%v", sid, ok)
	}

	onlyTurn := telemetry.WithTurnID(context.Background(), "t2")
	if sid, ok := telemetry.SessionIDFromContext(onlyTurn); ok || sid != "" {
		t.Fatalf("session id leaked from turn id: %q", sid)
	}
}

func TestIDs_KeepParentValuesAndCancellation(t *testing.T) {
	type otherKey struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), otherKey{}, 123))
	defer cancel()

	child := telemetry.WithSessionID(telemetry.WithTurnID(parent, "t1"), "s1")
	if v := child.Value(otherKey{}); v != 123 {
		t.Fatalf("unrelated value lost: %#v", v)
	}

	cancel()
	select {
	case <-child.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("child context did not observe parent cancellation")
	}
}
