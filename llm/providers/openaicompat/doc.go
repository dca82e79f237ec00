// Package openaicompat provides the HTTP transport for OpenAI-compatible
// chat completion services.
//
// DeepSeek and similar services share the same wire format. They embed
// openaicompat.Provider and only override what differs:
//
//   - Provider name and default model
//   - Base URL and endpoint paths
//   - Custom headers (if any)
//   - Request hooks for provider-specific fields
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "deepseek",
//	    APIKey:        cfg.APIKey,
//	    BaseURL:       "https://api.deepseek.com",
//	    FallbackModel: "deepseek-chat",
//	    EndpointPath:  "/chat/completions",
//	}, logger)
package openaicompat
