package provider

import "github.com/petasbytes/go-chatbot/memory"

// Reply is the classified model response: FinalAnswer or ToolRequest.
type Reply interface {
	// AssistantMessage is the message to append to history for this reply.
	AssistantMessage() memory.Message
	isReply()
}

// FinalAnswer ends a turn.
type FinalAnswer struct {
	Message memory.Message
}

// ToolRequest asks for one or more tools to run before the model continues.
// Any text on Message is auxiliary.
type ToolRequest struct {
	Message memory.Message
	Calls   []memory.ToolCall
}

func (f FinalAnswer) AssistantMessage() memory.Message { return f.Message }
func (t ToolRequest) AssistantMessage() memory.Message { return t.Message }

func (FinalAnswer) isReply() {}
func (ToolRequest) isReply() {}

// Text is the answer shown to the user.
func (f FinalAnswer) Text() string { return f.Message.Content }
