// Package memory holds session history.
//
// Persistence model:
//   - A session is an append-only, ordered list of messages keyed by an opaque id.
//   - Tool calls and tool results are stored alongside text so a resumed
//     session replays the exact conversation the model saw.
//   - InMemoryStore lives for the process; SQLiteStore survives restarts.
package memory
