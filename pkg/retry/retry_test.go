package retry

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func Test_Policy_SucceedsOnAttemptN_SleepsWithIncreasingBackoff(t *testing.T) {

	for n := 1; n <= 5; n++ {
		sleeper := &recordingSleeper{}
		policy := Policy{MaxAttempts: 5, BackoffBase: 2, Sleep: sleeper.Sleep}

		calls := 0
		attempts, err := policy.Do(context.Background(), func(attempt int) error {
			calls++
			if attempt < n {
				return errors.New("throttled")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, n, attempts)
		assert.Equal(t, n, calls)
		assert.Len(t, sleeper.delays, n-1)
		for i := 1; i < len(sleeper.delays); i++ {
			assert.Greater(t, sleeper.delays[i], sleeper.delays[i-1])
		}
	}
}

func Test_Policy_WhenAllAttemptsFail_ShouldReturnExhausted(t *testing.T) {

	sleeper := &recordingSleeper{}
	lastErr := errors.New("status 403")
	notified := 0
	policy := Policy{
		MaxAttempts: 3,
		BackoffBase: 1.5,
		Sleep:       sleeper.Sleep,
		Notify:      func(int, error, time.Duration) { notified++ },
	}

	attempts, err := policy.Do(context.Background(), func(int) error { return lastErr })

	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 2250 * time.Millisecond}, sleeper.delays)
	assert.Equal(t, 3, notified)
}

func Test_Policy_Delay_IsBaseToThePowerOfAttempt(t *testing.T) {

	policy := Policy{MaxAttempts: 4, BackoffBase: 2}

	assert.Equal(t, 2*time.Second, policy.Delay(1))
	assert.Equal(t, 4*time.Second, policy.Delay(2))
	assert.Equal(t, 8*time.Second, policy.Delay(3))
}

func Test_Policy_WhenContextCanceledDuringSleep_ShouldStop(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := Policy{MaxAttempts: 5, BackoffBase: 2}
	_, err := policy.Do(ctx, func(int) error {
		calls++
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func Test_Policy_Validate(t *testing.T) {

	assert.Error(t, Policy{MaxAttempts: 0, BackoffBase: 2}.Validate())
	assert.Error(t, Policy{MaxAttempts: 3, BackoffBase: 1}.Validate())
	assert.NoError(t, Policy{MaxAttempts: 3, BackoffBase: 2}.Validate())
}

func Test_Policy_WhenSleepFails_ShouldReturnSleepError(t *testing.T) {

	sleepErr := errors.New("sleep interrupted")
	lastErr := errors.New("status 502")
	calls := 0
	policy := Policy{
		MaxAttempts: 5,
		BackoffBase: 2,
		Sleep:       func(context.Context, time.Duration) error { return sleepErr },
	}

	attempts, err := policy.Do(context.Background(), func(int) error {
		calls++
		return lastErr
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, sleepErr)
	assert.ErrorIs(t, err, lastErr)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}

func Test_Policy_SingleAttempt_NeverSleeps(t *testing.T) {

	sleeper := &recordingSleeper{}
	policy := Policy{MaxAttempts: 1, BackoffBase: 2, Sleep: sleeper.Sleep}

	attempts, err := policy.Do(context.Background(), func(int) error { return errors.New("status 403") })

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Empty(t, sleeper.delays)
}

func Test_Policy_DelaysFollowBaseWithoutJitter(t *testing.T) {

	sleeper := &recordingSleeper{}
	policy := Policy{MaxAttempts: 5, BackoffBase: 3, Sleep: sleeper.Sleep}

	_, err := policy.Do(context.Background(), func(int) error { return errors.New("status 403") })

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, []time.Duration{3 * time.Second, 9 * time.Second, 27 * time.Second, 81 * time.Second}, sleeper.delays)
}
