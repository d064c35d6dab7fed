package tools

// Registry returns all tool definitions wired for the chatbot.
func Registry(s Searcher, maxResults int) []ToolDefinition {
	return []ToolDefinition{NewWebSearch(s, maxResults)}
}
