package enhance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BaSui01/jsonsage/schema"
)

const systemPrompt = "You are a JSON Schema assistant. Reply with a single JSON Schema document and nothing else."

func enhancePrompt(s *schema.Schema, description string) (string, error) {
	body, err := s.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	var b strings.Builder
	b.WriteString("Enhance this JSON Schema with descriptions and validations.\n")
	b.WriteString("Keep every existing property and type. Reply with the complete schema as JSON only.\n")
	b.WriteString("Original description: ")
	b.WriteString(description)
	b.WriteString("\nSchema:\n")
	b.Write(body)
	return b.String(), nil
}

func draftPrompt(description string) string {
	return "Write a JSON Schema (draft-07) with a root of type object for the data described below. " +
		"Include a property for every field the description mentions. Reply with the schema as JSON only.\n" +
		"Description: " + description
}

// stripFences 去掉模型常用的 Markdown 代码块包裹
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	start := strings.Index(t, "```")
	if start < 0 {
		return t
	}
	rest := t[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

var errEmptyReply = errors.New("enhance: empty reply")

// parseReply 解析模型回复：去代码块、元结构校验、反序列化、结构不变量检查
func parseReply(text string) (*schema.Schema, error) {
	body := stripFences(text)
	if body == "" {
		return nil, errEmptyReply
	}
	if res := schema.ValidateSchema(body); !res.Valid {
		return nil, fmt.Errorf("enhance: reply is not a schema: %s", strings.Join(res.Errors, "; "))
	}
	s, err := schema.Parse([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("enhance: decode reply: %w", err)
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	return s, nil
}
