package tools

import "encoding/json"

// ToolError is a machine-readable error body surfaced back to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool results small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

const (
	CodeToolNotFound = "ERR_TOOL_NOT_FOUND"
	CodeInvalidInput = "ERR_INVALID_INPUT"
	CodeSearchFailed = "ERR_SEARCH_FAILED"
)
