package otp

import "time"

// Remaining returns the seconds left in the current window, always within
// [1, period]. A non-positive period yields 0.
func Remaining(period int, nowSeconds int64) int {
	if period <= 0 {
		return 0
	}

	p := int64(period)
	m := nowSeconds % p
	if m < 0 {
		m += p
	}

	return int(p - m)
}

// ValidUntil returns the instant the window containing now ends.
func ValidUntil(period int, now time.Time) time.Time {
	return time.Unix(now.Unix()+int64(Remaining(period, now.Unix())), 0)
}
