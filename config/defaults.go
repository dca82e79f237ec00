// =============================================================================
// 📦 jsonsage 默认配置
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/jsonsage/cache"
	"github.com/BaSui01/jsonsage/llm/providers/deepseek"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		LLM:       DefaultLLMConfig(),
		Enhance:   DefaultEnhanceConfig(),
		Cache:     DefaultCacheConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
		MaxBodyBytes:    1 << 20,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

// DefaultLLMConfig 返回默认 DeepSeek 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:        deepseek.DefaultBaseURL,
		Model:          deepseek.DefaultModel,
		Timeout:        60 * time.Second,
		JSONMode:       true,
		MaxRetries:     3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		RateLimitRPS:   0,
		RateLimitBurst: 1,
	}
}

// DefaultEnhanceConfig 返回默认增强参数
func DefaultEnhanceConfig() EnhanceConfig {
	return EnhanceConfig{
		MaxTokens:          2048,
		RecursiveValidator: false,
	}
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	def := cache.DefaultConfig()
	return CacheConfig{
		MaxSize:         def.MaxSize,
		TTL:             def.TTL,
		CleanupInterval: 10 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "jsonsage",
		SampleRate:   0.1,
	}
}
