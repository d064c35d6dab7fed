// Package runner is the turn controller: it drives one user turn through
// alternating model calls and tool executions until the model answers.
//
// Invariant:
//   - every tool call is answered by exactly one tool message, appended right
//     after the assistant message that requested it, in request order.
//   - a turn's messages reach the session store together, only when the turn
//     completes; a failed turn leaves history untouched.
//
// Flow:
//
//	user(text) -> assistant(tool calls) -> tool(result)... -> assistant(text)
package runner
