package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func alwaysRetry(error) Action { return Retry }

func testPolicy() Policy {
	return Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), testPolicy(), alwaysRetry, func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, val)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	val, err := Do(context.Background(), testPolicy(), alwaysRetry, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(), alwaysRetry, func() (int, error) {
		calls++
		return 0, errTransient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	classify := func(err error) Action {
		if errors.Is(err, errPermanent) {
			return Stop
		}
		return Retry
	}

	calls := 0
	_, err := Do(context.Background(), testPolicy(), classify, func() (int, error) {
		calls++
		return 0, errPermanent
	})

	var permErr *PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 5, InitialBackoff: time.Minute}
	_, err := Do(ctx, p, alwaysRetry, func() (int, error) {
		return 0, errTransient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	p := testPolicy()
	p.OnRetry = func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	}

	calls := 0
	_, _ = Do(context.Background(), p, alwaysRetry, func() (int, error) {
		calls++
		return 0, errTransient
	})

	assert.Equal(t, []int{1, 2}, attempts)
}
