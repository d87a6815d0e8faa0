// Package errkind folds every backend's native status vocabulary into one
// taxonomy so callers can apply a single policy to all of them.
package errkind

import "fmt"

// Kind is the unified outcome classification.
type Kind int

const (
	Success Kind = iota
	RateLimited
	QuotaExhausted
	UnsupportedLanguagePair
	QueryRejected
	Timeout
	NetworkFailure
	Unknown
)

var kindNames = [...]string{
	Success:                 "success",
	RateLimited:             "rate_limited",
	QuotaExhausted:          "quota_exhausted",
	UnsupportedLanguagePair: "unsupported_language_pair",
	QueryRejected:           "query_rejected",
	Timeout:                 "timeout",
	NetworkFailure:          "network_failure",
	Unknown:                 "unknown",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Notice is the user-facing summary for a failure kind.
func (k Kind) Notice() string {
	switch k {
	case Success:
		return ""
	case RateLimited:
		return "Access frequency limited, try again later"
	case QuotaExhausted:
		return "Insufficient account balance"
	case UnsupportedLanguagePair:
		return "Language pair not supported"
	case QueryRejected:
		return "Query rejected"
	case Timeout:
		return "Request timed out"
	case NetworkFailure:
		return "Network request failed"
	default:
		return "Request failed"
	}
}
