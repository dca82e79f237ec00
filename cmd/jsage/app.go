package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/cache"
	"github.com/BaSui01/jsonsage/config"
	"github.com/BaSui01/jsonsage/enhance"
	"github.com/BaSui01/jsonsage/internal/logging"
	"github.com/BaSui01/jsonsage/llm"
	"github.com/BaSui01/jsonsage/llm/providers/deepseek"
	"github.com/BaSui01/jsonsage/pipeline"
	"github.com/BaSui01/jsonsage/schema"
)

// app 持有一次命令执行所需的 IO、环境与依赖工厂
type app struct {
	stdout io.Writer
	stderr io.Writer

	lookupEnv   func(string) (string, bool)
	newProvider func(cfg *config.Config, logger *zap.Logger) llm.Provider

	// 全局 flag
	configPath string
	logLevel   string
	debug      bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:    stdout,
		stderr:    stderr,
		lookupEnv: os.LookupEnv,
		newProvider: func(cfg *config.Config, logger *zap.Logger) llm.Provider {
			return deepseek.NewDeepSeekProvider(cfg.DeepSeekConfig(), logger)
		},
	}
}

// usageError 标记命令行参数错误
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jsage",
		Short:         "AI-assisted JSON Schema generation and validation",
		Long:          "jsage infers JSON Schemas from example data, enhances them with a remote model,\nand validates data and schemas.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.debug, "debug", false, "print full error details (same as DEBUG=1)")

	root.AddCommand(
		a.generateCmd(),
		a.validateCmd(),
		a.checkCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return a.handleError(err)
	}
	return 0
}

// =============================================================================
// 🔧 运行时装配
// =============================================================================

// load 读取配置并构造 logger。非 serve 命令默认只输出 warn 以上日志。
func (a *app) load(serving bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewLoader().
		WithConfigPath(a.configPath).
		WithLookupEnv(a.lookupEnv).
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Log
	switch {
	case a.logLevel != "":
		logCfg.Level = a.logLevel
	case !serving:
		logCfg.Level = "warn"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// buildFacade 装配远程客户端、缓存与管道门面
func (a *app) buildFacade(cfg *config.Config, provider llm.Provider, logger *zap.Logger, recorder any) (*pipeline.Facade, error) {
	clientOpts := []enhance.Option{
		enhance.WithRetryPolicy(cfg.RetryPolicy()),
		enhance.WithRateLimit(cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst),
	}
	facadeOpts := []pipeline.Option{
		pipeline.WithCache(cache.New(cfg.CacheSettings(), cache.WithLogger(logger))),
		pipeline.WithValidatorOptions(schema.ValidatorOptions{Recursive: cfg.Enhance.RecursiveValidator}),
	}
	if r, ok := recorder.(enhance.Recorder); ok {
		clientOpts = append(clientOpts, enhance.WithRecorder(r))
	}
	if r, ok := recorder.(pipeline.Recorder); ok {
		facadeOpts = append(facadeOpts, pipeline.WithRecorder(r))
	}

	client := enhance.New(provider, logger, clientOpts...)
	return pipeline.New(client, cfg.EnhancementConfig(), logger, facadeOpts...)
}

// remoteFacade 是 generate / validate 共用的装配流程，要求凭证存在
func (a *app) remoteFacade() (*pipeline.Facade, *zap.Logger, error) {
	cfg, logger, err := a.load(false)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireCredential(); err != nil {
		return nil, nil, err
	}
	facade, err := a.buildFacade(cfg, a.newProvider(cfg, logger), logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return facade, logger, nil
}

func (a *app) debugEnabled() bool {
	if a.debug {
		return true
	}
	v, ok := a.lookupEnv("DEBUG")
	return ok && v != "" && v != "0" && v != "false"
}

// errValidationFailed 校验未通过；详情已输出，只需非零退出
var errValidationFailed = errors.New("validation failed")
