// Package fallback asks a remote text-generation service for a reply when
// no local strategy produced one.
package fallback

// FailureKind classifies why a fetch produced no reply.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureDisabled
	FailureRateLimited
	FailureNetwork
	FailureTimeout
	FailureStatus
	FailureMalformed
	FailureEmpty
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureDisabled:
		return "disabled"
	case FailureRateLimited:
		return "rate_limited"
	case FailureNetwork:
		return "network"
	case FailureTimeout:
		return "timeout"
	case FailureStatus:
		return "status"
	case FailureMalformed:
		return "malformed"
	case FailureEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch. Text is set only when Failure is
// FailureNone.
type Result struct {
	Text    string
	Failure FailureKind
	Err     error
	Cached  bool
}

// OK reports whether the fetch produced a reply.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}
