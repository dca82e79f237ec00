package deepseek

import (
	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/llm"
	"github.com/BaSui01/jsonsage/llm/providers"
	"github.com/BaSui01/jsonsage/llm/providers/openaicompat"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
)

// DeepSeekProvider 实现 DeepSeek LLM 提供者.
// DeepSeek 使用 OpenAI 兼容的 API 格式.
type DeepSeekProvider struct {
	*openaicompat.Provider
}

// NewDeepSeekProvider 创建新的 DeepSeek 提供者实例.
func NewDeepSeekProvider(cfg providers.DeepSeekConfig, logger *zap.Logger) *DeepSeekProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	oc := openaicompat.Config{
		ProviderName:   "deepseek",
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		DefaultModel:   cfg.Model,
		FallbackModel:  DefaultModel,
		Timeout:        cfg.Timeout,
		EndpointPath:   "/chat/completions",
		ModelsEndpoint: "/models",
	}
	if cfg.JSONMode {
		oc.RequestHook = jsonModeHook
	}
	return &DeepSeekProvider{Provider: openaicompat.New(oc, logger)}
}

// jsonModeHook 要求 DeepSeek 只输出 JSON 对象
func jsonModeHook(_ *llm.ChatRequest, body *providers.OpenAICompatRequest) {
	body.ResponseFormat = &providers.ResponseFormat{Type: "json_object"}
}
