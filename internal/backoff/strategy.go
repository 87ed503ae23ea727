package backoff

import (
	"math/rand"
	"time"
)

// Strategy defines the interface for backoff calculation algorithms.
// Implementations must be safe for concurrent use.
type Strategy interface {
	// Calculate returns the delay before the attempt following attempt n.
	// Attempt numbering starts at 1. jitterWindow is an absolute bound: a
	// uniformly distributed duration in [0, jitterWindow) is added to the
	// computed delay.
	Calculate(attempt int, base, max time.Duration, multiplier float64, jitterWindow time.Duration) time.Duration
}

// ExponentialJitterStrategy implements exponential backoff with a bounded
// uniform jitter window: base * multiplier^attempt + rand[0, jitterWindow).
type ExponentialJitterStrategy struct{}

// Calculate implements the Strategy interface.
func (s ExponentialJitterStrategy) Calculate(attempt int, base, max time.Duration, multiplier float64, jitterWindow time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	// Prevent overflow by limiting attempt
	if attempt > 30 {
		attempt = 30
	}

	delay := time.Duration(float64(base) * pow(multiplier, attempt))
	if delay < 0 || delay > max {
		delay = max
	}

	if jitterWindow > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterWindow)))
	}
	if delay > max+jitterWindow {
		delay = max + jitterWindow
	}
	return delay
}

// DecorrelatedJitterStrategy implements decorrelated jitter as per the AWS
// architecture blog. It provides smoother tail latencies than exponential
// jitter under heavy retry contention. The jitterWindow parameter is unused:
// the randomness is inherent to the formula.
type DecorrelatedJitterStrategy struct{}

// Calculate implements the Strategy interface.
func (s DecorrelatedJitterStrategy) Calculate(attempt int, base, max time.Duration, _ float64, _ time.Duration) time.Duration {
	// Formula: random_between(base, min(cap, base * 3^attempt)).
	// The stateless variant approximates tracking the previous delay.
	if attempt < 1 {
		return base
	}
	if attempt > 10 {
		attempt = 10
	}

	lower := float64(base)
	upper := lower * pow(3.0, attempt)

	maxFloat := float64(max)
	if upper > maxFloat || upper < 0 {
		upper = maxFloat
	}
	if upper < lower {
		upper = lower
	}

	delay := time.Duration(lower + rand.Float64()*(upper-lower))
	if delay < 0 || delay > max {
		delay = max
	}
	return delay
}

// pow calculates base^exponent using integer exponentiation.
func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

// Pow exposes pow for callers outside the package.
func Pow(base float64, exponent int) float64 {
	return pow(base, exponent)
}
