package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastPolicy(attempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestBackoffRetryer_Success(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount, "应该只调用一次")
}

func TestBackoffRetryer_RetryAndSuccess(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	err := retryer.Do(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestBackoffRetryer_ExhaustedPropagatesLastError(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	callCount := 0
	last := errors.New("third failure")
	err := retryer.Do(context.Background(), func() error {
		callCount++
		if callCount == 3 {
			return last
		}
		return errors.New("earlier failure")
	})

	require.Error(t, err)
	assert.Equal(t, 3, callCount, "应该调用 MaxAttempts 次")
	assert.ErrorIs(t, err, last)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
}

func TestBackoffRetryer_ContextCanceled(t *testing.T) {
	policy := fastPolicy(5)
	policy.InitialDelay = time.Hour
	policy.MaxDelay = time.Hour
	retryer := NewBackoffRetryer(policy, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0
	done := make(chan error, 1)
	go func() {
		done <- retryer.Do(ctx, func() error {
			callCount++
			return errors.New("fail")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, callCount)
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestBackoffRetryer_ShouldRetry(t *testing.T) {
	policy := fastPolicy(3)
	policy.ShouldRetry = RetryUnlessPermanent
	retryer := NewBackoffRetryer(policy, zap.NewNop())

	callCount := 0
	authErr := &llm.Error{Code: llm.ErrUnauthorized, Message: "bad key", HTTPStatus: 401}
	err := retryer.Do(context.Background(), func() error {
		callCount++
		return authErr
	})

	assert.Equal(t, 1, callCount, "永久错误不应重试")
	assert.Same(t, authErr, err)
}

func TestRetryUnlessPermanent(t *testing.T) {
	assert.False(t, RetryUnlessPermanent(nil))
	assert.False(t, RetryUnlessPermanent(context.Canceled))
	assert.False(t, RetryUnlessPermanent(&llm.Error{Code: llm.ErrForbidden}))
	assert.True(t, RetryUnlessPermanent(&llm.Error{Code: llm.ErrRateLimited, Retryable: true}))
	assert.True(t, RetryUnlessPermanent(errors.New("connection reset")))
}

func TestBackoffRetryer_DelayCalculation(t *testing.T) {
	r := NewBackoffRetryer(&RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}, zap.NewNop()).(*backoffRetryer)

	// 2^i * base，封顶 MaxDelay
	assert.Equal(t, 1*time.Second, r.calculateDelay(1))
	assert.Equal(t, 2*time.Second, r.calculateDelay(2))
	assert.Equal(t, 4*time.Second, r.calculateDelay(3))
	assert.Equal(t, 5*time.Second, r.calculateDelay(4))
}

func TestBackoffRetryer_JitterStaysInRange(t *testing.T) {
	r := NewBackoffRetryer(&RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}, zap.NewNop()).(*backoffRetryer)

	for i := 0; i < 50; i++ {
		d := r.calculateDelay(2)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestBackoffRetryer_OnRetryCallback(t *testing.T) {
	policy := fastPolicy(3)
	var attempts []int
	var delays []time.Duration
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	}
	retryer := NewBackoffRetryer(policy, zap.NewNop())

	_ = retryer.Do(context.Background(), func() error { return errors.New("fail") })

	assert.Equal(t, []int{2, 3}, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}

func TestNewBackoffRetryer_Normalizes(t *testing.T) {
	r := NewBackoffRetryer(&RetryPolicy{MaxAttempts: 0, Multiplier: 0.5}, nil)
	p := r.Policy()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 2.0, p.Multiplier)

	def := NewBackoffRetryer(nil, nil).Policy()
	assert.Equal(t, 3, def.MaxAttempts)
	assert.False(t, def.Jitter)
}

func TestDoWithResultTyped(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(2), zap.NewNop())

	val, err := DoWithResultTyped(retryer, context.Background(), func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	val, err = DoWithResultTyped(retryer, context.Background(), func() (int, error) {
		return 7, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Zero(t, val)
}

func TestDoOrDegrade(t *testing.T) {
	retryer := NewBackoffRetryer(fastPolicy(3), zap.NewNop())

	t.Run("always failing returns fallback", func(t *testing.T) {
		got, out := DoOrDegrade(retryer, context.Background(), "original", func() (string, error) {
			return "", errors.New("down")
		})
		assert.Equal(t, "original", got)
		assert.True(t, out.Degraded)
		assert.Equal(t, 3, out.Attempts)
		assert.EqualError(t, errors.Unwrap(out.Err), "down")
	})

	t.Run("fails once then succeeds", func(t *testing.T) {
		calls := 0
		got, out := DoOrDegrade(retryer, context.Background(), "original", func() (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("flaky")
			}
			return "enhanced", nil
		})
		assert.Equal(t, "enhanced", got)
		assert.False(t, out.Degraded)
		assert.Equal(t, 2, out.Attempts)
		assert.NoError(t, out.Err)
	})
}
