package gdpr

import (
	"time"
)

const (
	// DefaultMaxAgeDays is the age after which stored consent is considered outdated.
	DefaultMaxAgeDays = 365

	// DefaultTCString decodes to timestamp 0 and stands in for an absent TC string.
	DefaultTCString = "AAAAAAA"

	millisPerDay = 24 * 60 * 60 * 1000
)

// ExpiryPolicy decides whether a stored TC string is too old to be used.
type ExpiryPolicy struct {
	// MaxAgeDays is the largest age, in whole days, that is still valid. Zero expires
	// everything older than a day. A negative value selects DefaultMaxAgeDays.
	MaxAgeDays int
}

// NewExpiryPolicy returns the policy with the default maximum age.
func NewExpiryPolicy() ExpiryPolicy {
	return ExpiryPolicy{MaxAgeDays: DefaultMaxAgeDays}
}

func (p ExpiryPolicy) maxAgeDays() int64 {
	if p.MaxAgeDays < 0 {
		return DefaultMaxAgeDays
	}
	return int64(p.MaxAgeDays)
}

// Exceeded reports whether an age in whole days, as returned by Age, is past the policy.
func (p ExpiryPolicy) Exceeded(days int64) bool {
	return days > p.maxAgeDays()
}

// IsExpired reports whether the TC string is older than the policy allows at now.
// An absent ("") or too short string is replaced by DefaultTCString and is therefore expired.
func (p ExpiryPolicy) IsExpired(tcString string, now time.Time) bool {
	days, _ := Age(tcString, now)
	return p.Exceeded(days)
}

// IsExpired applies the default 365 day policy.
func IsExpired(tcString string, now time.Time) bool {
	return NewExpiryPolicy().IsExpired(tcString, now)
}

// Age returns the number of whole days between the TC string's creation time and now,
// truncated toward zero. The error is the decode warning of DecodeTimestamp, if any.
func Age(tcString string, now time.Time) (int64, error) {
	if len(tcString) < timestampEnd {
		tcString = DefaultTCString
	}
	created, err := DecodeTimestamp(tcString)
	return (now.UnixMilli() - int64(created)) / millisPerDay, err
}
