// Package tools defines tool contracts, the web_search tool and the invoker
// that turns model tool calls into tool result messages.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - web_search: bounded web search backed by a Searcher.
//   - Invoker: resolves each tool call to exactly one tool message with the same call id.
package tools
