package enhance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/jsonsage/internal/ctxkeys"
	"github.com/BaSui01/jsonsage/llm"
	"github.com/BaSui01/jsonsage/llm/retry"
	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/types"
)

const instrumentationName = "github.com/BaSui01/jsonsage/enhance"

// Outcome labels reported to the Recorder.
const (
	OutcomeEnhanced = "enhanced"
	OutcomeDegraded = "degraded"
	OutcomeSkipped  = "skipped"
	OutcomeDrafted  = "drafted"
	OutcomeFailed   = "failed"
)

// Recorder receives per-call measurements. internal/metrics.Collector implements it.
type Recorder interface {
	RecordEnhancement(outcome string, attempts int, duration time.Duration)
	RecordLLMRequest(provider, model, status string, duration time.Duration, tokens int)
}

type nopRecorder struct{}

func (nopRecorder) RecordEnhancement(string, int, time.Duration)                {}
func (nopRecorder) RecordLLMRequest(string, string, string, time.Duration, int) {}

// Result describes how an enhancement call ended.
type Result struct {
	Schema   *schema.Schema
	Enhanced bool
	Attempts int
	Err      error
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy replaces the default 3-attempt exponential policy.
func WithRetryPolicy(p *retry.RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithRateLimit waits on a token bucket before every transport attempt.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Client 增强客户端
type Client struct {
	provider llm.Provider
	policy   *retry.RetryPolicy
	retryer  retry.Retryer
	limiter  *rate.Limiter
	recorder Recorder
	tracer   trace.Tracer
	attempts metric.Int64Histogram
	logger   *zap.Logger
}

// New creates a Client around provider.
func New(provider llm.Provider, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		provider: provider,
		recorder: nopRecorder{},
		tracer:   otel.Tracer(instrumentationName),
		logger:   logger.With(zap.String("component", "enhance")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy == nil {
		c.policy = DefaultRetryPolicy()
	}
	c.retryer = retry.NewBackoffRetryer(c.policy, c.logger)

	hist, err := otel.Meter(instrumentationName).Int64Histogram("enhance.attempts",
		metric.WithDescription("Transport attempts per enhancement call"),
		metric.WithUnit("{attempt}"))
	if err != nil {
		c.logger.Warn("attempts histogram unavailable", zap.Error(err))
	}
	c.attempts = hist
	return c
}

// DefaultRetryPolicy is retry.DefaultRetryPolicy with permanent provider
// errors (bad credential, exhausted quota) excluded from retrying.
func DefaultRetryPolicy() *retry.RetryPolicy {
	p := retry.DefaultRetryPolicy()
	p.ShouldRetry = retry.RetryUnlessPermanent
	return p
}

// Provider returns the underlying transport.
func (c *Client) Provider() llm.Provider { return c.provider }

// Enhance returns the enhanced schema, or s unchanged when enhancement fails.
func (c *Client) Enhance(ctx context.Context, s *schema.Schema, description string, cfg *Config) *schema.Schema {
	return c.EnhanceDetailed(ctx, s, description, cfg).Schema
}

// EnhanceDetailed is Enhance with the outcome attached. It never returns
// an error value to act on: Result.Err is informational.
func (c *Client) EnhanceDetailed(ctx context.Context, s *schema.Schema, description string, cfg *Config) Result {
	start := time.Now()
	requestID := requestIDFrom(ctx)
	ctx, span := c.tracer.Start(ctx, "enhance.Enhance",
		trace.WithAttributes(attribute.String("enhance.request_id", requestID)))
	defer span.End()
	log := c.logger.With(zap.String("request_id", requestID))

	res := Result{Schema: s}
	finish := func(outcome string) Result {
		span.SetAttributes(
			attribute.String("enhance.outcome", outcome),
			attribute.Int("enhance.attempts", res.Attempts),
		)
		c.recorder.RecordEnhancement(outcome, res.Attempts, time.Since(start))
		if c.attempts != nil {
			c.attempts.Record(ctx, int64(res.Attempts), metric.WithAttributes(attribute.String("outcome", outcome)))
		}
		return res
	}

	if s == nil {
		res.Err = types.NewInputError("schema is required")
		return finish(OutcomeSkipped)
	}
	if err := cfg.Validate(); err != nil {
		res.Err = err
		log.Debug("enhancement skipped", zap.Error(err))
		return finish(OutcomeSkipped)
	}
	prompt, err := enhancePrompt(s, description)
	if err != nil {
		res.Err = err
		return finish(OutcomeSkipped)
	}

	req := c.newRequest(requestID, cfg, prompt)
	ctx = llm.WithCredentialOverride(ctx, llm.CredentialOverride{APIKey: cfg.Credential})

	enhanced, outcome := retry.DoOrDegrade(c.retryer, ctx, s, func() (*schema.Schema, error) {
		return c.exchange(ctx, req)
	})
	res.Attempts = outcome.Attempts
	if outcome.Degraded {
		res.Err = outcome.Err
		span.RecordError(outcome.Err)
		log.Warn("enhancement degraded, returning original schema",
			zap.Int("attempts", outcome.Attempts),
			zap.Error(outcome.Err),
		)
		return finish(OutcomeDegraded)
	}

	res.Schema = enhanced
	res.Enhanced = true
	log.Debug("schema enhanced",
		zap.Int("attempts", outcome.Attempts),
		zap.Duration("duration", time.Since(start)),
	)
	return finish(OutcomeEnhanced)
}

// Draft asks the remote service for an initial schema matching description.
// Exhausted retries surface as a remote service error wrapping the last failure.
func (c *Client) Draft(ctx context.Context, description string, cfg *Config) (*schema.Schema, error) {
	start := time.Now()
	requestID := requestIDFrom(ctx)
	ctx, span := c.tracer.Start(ctx, "enhance.Draft",
		trace.WithAttributes(attribute.String("enhance.request_id", requestID)))
	defer span.End()

	if strings.TrimSpace(description) == "" {
		return nil, types.NewInputError("description is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	req := c.newRequest(requestID, cfg, draftPrompt(description))
	ctx = llm.WithCredentialOverride(ctx, llm.CredentialOverride{APIKey: cfg.Credential})

	attempts := 0
	s, err := retry.DoWithResultTyped(c.retryer, ctx, func() (*schema.Schema, error) {
		attempts++
		return c.exchange(ctx, req)
	})
	span.SetAttributes(attribute.Int("enhance.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "draft failed")
		c.recorder.RecordEnhancement(OutcomeFailed, attempts, time.Since(start))
		c.logger.Error("schema draft failed",
			zap.String("request_id", requestID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, remoteError(err)
	}
	c.recorder.RecordEnhancement(OutcomeDrafted, attempts, time.Since(start))
	return s, nil
}

func (c *Client) newRequest(requestID string, cfg *Config, prompt string) *llm.ChatRequest {
	return &llm.ChatRequest{
		TraceID: requestID,
		Model:   cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// exchange is one transport attempt: rate limit, call, parse.
func (c *Client) exchange(ctx context.Context, req *llm.ChatRequest) (*schema.Schema, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.provider.Completion(ctx, req)
	c.recordRequest(req, resp, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	content, ok := resp.FirstContent()
	if !ok {
		return nil, &llm.Error{
			Code:      llm.ErrEmptyResponse,
			Message:   "response has no choices",
			Retryable: true,
			Provider:  c.provider.Name(),
		}
	}
	return parseReply(content)
}

func (c *Client) recordRequest(req *llm.ChatRequest, resp *llm.ChatResponse, err error, d time.Duration) {
	status := "ok"
	tokens := 0
	model := req.Model
	if err != nil {
		status = "error"
	} else if resp != nil {
		tokens = resp.Usage.TotalTokens
		if resp.Model != "" {
			model = resp.Model
		}
	}
	c.recorder.RecordLLMRequest(c.provider.Name(), model, status, d, tokens)
}

// remoteError 将传输层错误归类为 RemoteServiceError
func remoteError(err error) *types.Error {
	code := types.ErrAPIError
	var le *llm.Error
	switch {
	case errors.As(err, &le):
		switch le.Code {
		case llm.ErrUnauthorized, llm.ErrForbidden:
			code = types.ErrAuthentication
		case llm.ErrRateLimited, llm.ErrQuotaExceeded:
			code = types.ErrRateLimited
		case llm.ErrUpstreamError, llm.ErrUpstreamTimeout, llm.ErrModelOverloaded:
			code = types.ErrUpstreamError
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = types.ErrNetworkError
	}
	return types.NewRemoteError(code, "schema generation failed").WithCause(err)
}

// requestIDFrom 复用入站请求的 ID，没有时生成新的
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctxkeys.RequestID(ctx); ok {
		return id
	}
	return uuid.NewString()
}
