package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// ComputeJitter returns a random duration in [0, max). A non-positive max yields 0.
func ComputeJitter(max time.Duration, rng *rand.Rand) time.Duration {
	if max <= 0 || rng == nil {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the wait before the next attempt:
// initial * multiplier^(attempt-1), capped at maxDuration, plus jitter.
// attempt is 1-based; values below 1 are treated as 1.
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), float64(attempt-1))
	if maxDuration := float64(param.MaxDuration()); maxDuration > 0 && base > maxDuration {
		base = maxDuration
	}
	return time.Duration(base) + ComputeJitter(jitter, rng)
}
