package retry

import "time"

// maxShift bounds the exponent so base * 2^attempt cannot overflow.
const maxShift = 30

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	return base * (1 << attempt)
}

// Capped is ExponentialBackoff limited to max. A non-positive max disables the cap.
func Capped(attempt int, base, max time.Duration) time.Duration {
	d := ExponentialBackoff(attempt, base)
	if max > 0 && (d > max || d < 0) {
		return max
	}
	return d
}
