// Package fixtures 提供测试用的 Schema 文本与模型响应样例。
package fixtures

import (
	"time"

	"github.com/BaSui01/jsonsage/llm"
)

// PersonJSON 示例数据
const PersonJSON = `{"name":"Ada","age":36,"tags":["math"],"address":{"city":"London"}}`

// PersonSchema 对 PersonJSON 推断得到的结构
const PersonSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "number"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "address": {"type": "object", "properties": {"city": {"type": "string"}}}
  }
}`

// EnhancedPersonSchema 模型增强后的结构，带描述与约束
const EnhancedPersonSchema = `{
  "type": "object",
  "title": "Person",
  "description": "A person record",
  "properties": {
    "name": {"type": "string", "description": "Full name", "minLength": 1},
    "age": {"type": "integer", "description": "Age in years", "minimum": 0},
    "tags": {"type": "array", "items": {"type": "string"}},
    "address": {"type": "object", "properties": {"city": {"type": "string"}}}
  },
  "required": ["name", "age"]
}`

// FencedSchema 包裹在 Markdown 代码块中的回复
const FencedSchema = "```json\n" + EnhancedPersonSchema + "\n```"

// NotASchema 是合法 JSON 但不满足元结构
const NotASchema = `{"properties": {"name": {"type": "string"}}}`

// ChatResponse 构造只含一个 choice 的响应
func ChatResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-001",
		Provider: "mock",
		Model:    "deepseek-chat",
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
		Usage: llm.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		CreatedAt: time.Now(),
	}
}

// EmptyChatResponse 没有任何 choice 的响应
func EmptyChatResponse() *llm.ChatResponse {
	return &llm.ChatResponse{ID: "resp-empty", Provider: "mock", Model: "deepseek-chat"}
}
