package enhance

import (
	"fmt"
	"strings"

	"github.com/BaSui01/jsonsage/types"
)

// Config 单次增强调用的参数，由调用方持有，客户端只读不改
type Config struct {
	Credential  string   `json:"-" yaml:"-"`
	Model       string   `json:"model,omitempty" yaml:"model"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature"`
}

// Validate reports whether the config can be sent to the remote service.
func (c *Config) Validate() error {
	if c == nil {
		return types.NewInputError("enhancement config is required")
	}
	if strings.TrimSpace(c.Credential) == "" {
		return types.NewInputError("enhancement credential is required")
	}
	if c.MaxTokens < 0 {
		return types.NewInputError(fmt.Sprintf("max_tokens must be >= 0, got %d", c.MaxTokens))
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 1) {
		return types.NewInputError(fmt.Sprintf("temperature must be in [0,1], got %g", *c.Temperature))
	}
	return nil
}
