package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BaSui01/jsonsage/cache"
	"github.com/BaSui01/jsonsage/enhance"
	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/types"
)

// Enhancer is the remote half of the pipeline. *enhance.Client implements it.
type Enhancer interface {
	EnhanceDetailed(ctx context.Context, s *schema.Schema, description string, cfg *enhance.Config) enhance.Result
	Draft(ctx context.Context, description string, cfg *enhance.Config) (*schema.Schema, error)
}

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordCacheLookup(hit bool)
	RecordValidation(kind string, valid bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheLookup(bool)        {}
func (nopRecorder) RecordValidation(string, bool) {}

// Option configures a Facade.
type Option func(*Facade)

// WithCache shares an existing cache instead of creating one.
func WithCache(c *cache.SchemaCache) Option {
	return func(f *Facade) {
		if c != nil {
			f.cache = c
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Facade) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithValidatorOptions changes how ValidateSchema walks schemas.
func WithValidatorOptions(opts schema.ValidatorOptions) Option {
	return func(f *Facade) { f.validator = opts }
}

// Facade 管道门面。并发安全。
type Facade struct {
	enhancer  Enhancer
	cfg       *enhance.Config
	cache     *cache.SchemaCache
	group     singleflight.Group
	recorder  Recorder
	validator schema.ValidatorOptions
	logger    *zap.Logger
}

// New creates a Facade. cfg is read on every remote call and never modified.
func New(enhancer Enhancer, cfg *enhance.Config, logger *zap.Logger, opts ...Option) (*Facade, error) {
	if enhancer == nil {
		return nil, types.NewError(types.ErrInvalidConfiguration, "pipeline: enhancer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Facade{
		enhancer: enhancer,
		cfg:      cfg,
		recorder: nopRecorder{},
		logger:   logger.With(zap.String("component", "pipeline")),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cache == nil {
		f.cache = cache.New(cache.DefaultConfig(), cache.WithLogger(f.logger))
	}
	return f, nil
}

// Cache returns the cache used for enhanced schemas.
func (f *Facade) Cache() *cache.SchemaCache { return f.cache }

// GenerateSchema synthesizes a schema from a free-text description.
func (f *Facade) GenerateSchema(ctx context.Context, description string, opts GenerateOptions) (*schema.Schema, error) {
	if strings.TrimSpace(description) == "" {
		return nil, types.NewInputError("description is required")
	}

	draft, err := f.enhancer.Draft(ctx, description, f.cfg)
	if err != nil {
		return nil, err
	}
	opts.apply(draft)
	if !isValid(draft) {
		return nil, types.NewRemoteError(types.ErrAPIError, "generated schema is invalid")
	}

	out := f.enhanceCached(ctx, draft, description)
	opts.apply(out)
	return f.finalize(out, draft)
}

// ConvertJSONToSchema infers a schema from example JSON text.
func (f *Facade) ConvertJSONToSchema(ctx context.Context, jsonText string, opts ConvertOptions) (*schema.Schema, error) {
	inferred, err := schema.InferJSON([]byte(jsonText), schema.InferOptions{IncludeExamples: opts.IncludeExamples})
	if err != nil {
		return nil, err
	}
	if !opts.Enhance {
		return f.finalize(inferred, nil)
	}
	return f.finalize(f.enhanceCached(ctx, inferred, opts.Description), inferred)
}

// ValidateJSON checks example data against s at the root level.
func (f *Facade) ValidateJSON(dataText string, s *schema.Schema) (schema.Result, error) {
	res, err := schema.ValidateData(dataText, s)
	if err != nil {
		return res, err
	}
	f.recorder.RecordValidation("data", res.Valid)
	return res, nil
}

// ValidateSchema runs the meta-schema checks on schema text.
func (f *Facade) ValidateSchema(text string) schema.Result {
	res := schema.ValidateSchemaWith(text, f.validator)
	f.recorder.RecordValidation("schema", res.Valid)
	return res
}

// Cleanup removes expired cache entries and returns how many were removed.
func (f *Facade) Cleanup() int {
	return f.cache.Cleanup()
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (f *Facade) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := f.Cleanup(); n > 0 {
				f.logger.Debug("expired schemas removed", zap.Int("count", n))
			}
		}
	}
}

// enhanceCached 查缓存，未命中则合并同 key 的并发增强，只缓存成功结果。
// 返回值总是调用方独占的副本或 candidate 本身。
func (f *Facade) enhanceCached(ctx context.Context, candidate *schema.Schema, description string) *schema.Schema {
	key := cache.HashKey(candidate, description)
	if hit, ok := f.cache.Get(key); ok {
		f.recorder.RecordCacheLookup(true)
		return hit
	}
	f.recorder.RecordCacheLookup(false)

	v, _, shared := f.group.Do(key, func() (any, error) {
		// 结果由同 key 的所有调用方共享，不能随发起者的 ctx 一起取消；超时由 provider 自己控制
		ctx := context.WithoutCancel(ctx)
		res := f.enhancer.EnhanceDetailed(ctx, candidate, description, f.cfg)
		if !res.Enhanced {
			return nil, nil
		}
		if !isValid(res.Schema) {
			f.logger.Warn("enhanced schema failed validation, keeping candidate", zap.String("key", key))
			return nil, nil
		}
		f.cache.Set(key, res.Schema)
		return res.Schema, nil
	})

	enhanced, _ := v.(*schema.Schema)
	if enhanced == nil {
		return candidate
	}
	if shared {
		return enhanced.Clone()
	}
	return enhanced
}

// finalize 返回通过校验的结果；out 不合法时回退到 fallback
func (f *Facade) finalize(out, fallback *schema.Schema) (*schema.Schema, error) {
	if isValid(out) {
		return out, nil
	}
	if fallback != nil && fallback != out && isValid(fallback) {
		f.logger.Warn("result failed validation, returning unenhanced schema")
		return fallback, nil
	}
	return nil, types.NewError(types.ErrInternalError, "produced schema failed validation")
}

func isValid(s *schema.Schema) bool {
	if s == nil || s.Check() != nil {
		return false
	}
	data, err := json.Marshal(s)
	if err != nil {
		return false
	}
	return schema.ValidateSchema(string(data)).Valid
}
