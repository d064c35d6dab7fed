package provider

import (
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

// toParams converts session history into Messages API params.
//
// Consecutive tool messages collapse into a single user message of tool_result
// blocks, in order, so each assistant tool_use turn is followed by exactly one
// user turn carrying all of its results. Assistant messages with neither text
// nor tool calls are dropped since the API rejects empty content.
func toParams(history []memory.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	var results []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range history {
		switch m.Role {
		case memory.RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
		case memory.RoleUser:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case memory.RoleAssistant:
			flush()
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, c := range m.ToolCalls {
				input := c.Arguments
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    c.ID,
					Name:  c.Name,
					Input: input,
				}})
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	flush()
	return out
}

func toolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// fromMessage classifies an API response.
func fromMessage(msg *anthropic.Message) Reply {
	var (
		texts []string
		calls []memory.ToolCall
	)
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the tool implementation
			calls = append(calls, memory.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	text := strings.Join(texts, "\n")
	if len(calls) > 0 {
		return ToolRequest{Message: memory.NewAssistantMessage(text, calls...), Calls: calls}
	}
	return FinalAnswer{Message: memory.NewAssistantMessage(text)}
}
