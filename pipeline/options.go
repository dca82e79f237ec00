package pipeline

import "github.com/BaSui01/jsonsage/schema"

// GenerateOptions 描述生成的附加选项，在 Draft 之后和增强之后各应用一次
type GenerateOptions struct {
	Title                string
	Description          string
	RequireAll           bool
	AdditionalProperties *bool
}

func (o GenerateOptions) apply(s *schema.Schema) {
	if s == nil {
		return
	}
	if o.Title != "" {
		s.Title = o.Title
	}
	if o.Description != "" {
		s.Description = o.Description
	}
	if s.Kind != schema.KindObject {
		return
	}
	if o.RequireAll {
		s.RequireAll()
	}
	if o.AdditionalProperties != nil {
		s.SetAdditionalProperties(*o.AdditionalProperties)
	}
}

// ConvertOptions 示例 JSON 转换选项
type ConvertOptions struct {
	IncludeExamples bool
	Enhance         bool
	// Description 随候选 schema 一并发送给增强服务，也参与缓存键
	Description string
}
