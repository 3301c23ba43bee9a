package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestRetry_Success(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := Retry(context.Background(), fastPolicy(3), func() error {
		attempts++
		return expectedErr
	})
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Retry(ctx, RetryPolicy{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond}, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetry_InvalidPolicy(t *testing.T) {
	called := false
	err := Retry(context.Background(), RetryPolicy{}, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.False(t, called)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.delay(1))
	assert.Equal(t, 200*time.Millisecond, p.delay(2))
	assert.Equal(t, 800*time.Millisecond, p.delay(4))

	p.MaxDelay = 300 * time.Millisecond
	assert.Equal(t, 300*time.Millisecond, p.delay(4))
}
