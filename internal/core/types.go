package core

import "encoding/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockImage      BlockType = "image"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

type Message struct {
	Role   Role    `json:"role"`
	Blocks []Block `json:"blocks"`
}

// Block is a closed union over the content kinds a message can carry. Type
// selects the variant; exactly one of the payload fields is set for it.
type Block struct {
	Type       BlockType   `json:"type"`
	Text       string      `json:"text,omitempty"`
	Image      *ImageData  `json:"image,omitempty"`
	ToolUse    *ToolUse    `json:"tool_use,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

func ThinkingBlock(text string) Block {
	return Block{Type: BlockThinking, Text: text}
}

func ImageBlock(mediaType, data string) Block {
	return Block{Type: BlockImage, Image: &ImageData{MediaType: mediaType, Data: data}}
}

func ToolUseBlock(id, name string, input map[string]any) Block {
	return Block{Type: BlockToolUse, ToolUse: &ToolUse{ID: id, Name: name, Input: input}}
}

func ToolResultBlock(toolUseID string, content ResultPayload, isError bool) Block {
	return Block{Type: BlockToolResult, ToolResult: &ToolResult{ToolUseID: toolUseID, Content: content, IsError: isError}}
}

type ImageData struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

type ToolResult struct {
	ToolUseID string        `json:"tool_use_id"`
	Content   ResultPayload `json:"content"`
	IsError   bool          `json:"is_error,omitempty"`
}

type PayloadType string

const (
	PayloadText  PayloadType = "text"
	PayloadJSON  PayloadType = "json"
	PayloadImage PayloadType = "image"
)

// ResultPayload holds a tool result body: plain text, an arbitrary JSON
// value kept in serialized form, or an image.
type ResultPayload struct {
	Type  PayloadType     `json:"type"`
	Text  string          `json:"text,omitempty"`
	JSON  json.RawMessage `json:"json,omitempty"`
	Image *ImageData      `json:"image,omitempty"`
}

func TextPayload(text string) ResultPayload {
	return ResultPayload{Type: PayloadText, Text: text}
}

func JSONPayload(raw json.RawMessage) ResultPayload {
	return ResultPayload{Type: PayloadJSON, JSON: raw}
}

type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Request is the assembled, bounded request handed to a transport. This
// package defines the shape only; sending it is the caller's concern.
type Request struct {
	Model     string           `json:"model"`
	System    string           `json:"system,omitempty"`
	Messages  []Message        `json:"messages"`
	Tools     []ToolDefinition `json:"tools,omitempty"`
	MaxTokens int              `json:"max_tokens"`
	Stream    bool             `json:"stream"`
}
