package telemetry

import (
	"os"
)

const defaultEventsDir = ".agent"

// ObserveEnabled reports whether JSONL emission is on (CHATBOT_OBSERVE_JSON=1).
// The environment is read on every call so tests can toggle it mid-run.
func ObserveEnabled() bool {
	return os.Getenv("CHATBOT_OBSERVE_JSON") == "1"
}

// EventsDir is the directory holding events.jsonl (CHATBOT_EVENTS_DIR, default ".agent").
func EventsDir() string {
	if v := os.Getenv("CHATBOT_EVENTS_DIR"); v != "" {
		return v
	}
	return defaultEventsDir
}
