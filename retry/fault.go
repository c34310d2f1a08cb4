package retry

// FaultTag classifies a failed attempt for retry purposes
type FaultTag string

const (
	TransientNetwork FaultTag = "transient_network"
	TransientServer  FaultTag = "transient_server"
	RateLimited      FaultTag = "rate_limited"
	Timeout          FaultTag = "timeout"
	Permanent        FaultTag = "permanent"
	// Cancelled is produced when the caller abandons the logical call.
	Cancelled FaultTag = "cancelled"
)

// Retryable reports whether a failure with this tag may be attempted again
func (t FaultTag) Retryable() bool {
	switch t {
	case TransientNetwork, TransientServer, RateLimited, Timeout:
		return true
	default:
		return false
	}
}

func (t FaultTag) String() string {
	return string(t)
}
