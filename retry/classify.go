package retry

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// MaxCauseDepth bounds how many links of an error chain Classify inspects
const MaxCauseDepth = 32

// Classifier maps a failed attempt to a FaultTag
type Classifier func(err error) FaultTag

// StatusCoder is implemented by failures that carry an HTTP status code
type StatusCoder interface {
	StatusCode() int
}

// NetworkFaulter marks failures raised below the HTTP layer
type NetworkFaulter interface {
	NetworkFault() bool
}

var (
	resetSignatures = []string{
		"connection reset by peer",
		"connection reset",
		"recvaddress(..) failed",
	}
	networkSignatures = []string{
		"connection refused",
		"no route to host",
		"name or service not known",
		"no such host",
		"timeout",
	}
)

// Classify returns the FaultTag for err. Rules are evaluated in priority order
// and the first match wins. A nil error is Permanent: there is nothing to retry.
func Classify(err error) FaultTag {
	if err == nil {
		return Permanent
	}

	if status, ok := statusOf(err); ok {
		if status >= http.StatusInternalServerError {
			return TransientServer
		}
		if status == http.StatusTooManyRequests {
			return RateLimited
		}
	}

	if anyCause(err, func(e error) bool { return e == context.Canceled }) {
		return Cancelled
	}

	if anyCause(err, isConnectionReset) {
		return TransientNetwork
	}

	if anyCause(err, isTimeout) {
		return Timeout
	}

	if isNetworkLevel(err) && containsAny(strings.ToLower(err.Error()), networkSignatures) {
		return TransientNetwork
	}

	return Permanent
}

// Summary renders a one-line description of err for retry events
func Summary(err error) string {
	if err == nil {
		return ""
	}
	if status, ok := statusOf(err); ok {
		if status >= http.StatusInternalServerError {
			return fmt.Sprintf("ServerError[%d]: %s", status, err.Error())
		}
		return fmt.Sprintf("HttpError[%d]: %s", status, err.Error())
	}
	if isNetworkLevel(err) {
		return "NetworkError: " + err.Error()
	}
	return err.Error()
}

// anyCause walks the cause chain of err breadth-first, following both single
// and multi-error Unwrap methods, and stops after MaxCauseDepth links.
func anyCause(err error, match func(error) bool) bool {
	queue := []error{err}
	for visited := 0; len(queue) > 0 && visited < MaxCauseDepth; visited++ {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		if match(current) {
			return true
		}
		switch u := current.(type) {
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		}
	}
	return false
}

func statusOf(err error) (int, bool) {
	status := 0
	found := anyCause(err, func(e error) bool {
		if sc, ok := e.(StatusCoder); ok && sc.StatusCode() > 0 {
			status = sc.StatusCode()
			return true
		}
		return false
	})
	return status, found
}

func isConnectionReset(err error) bool {
	if errno, ok := err.(syscall.Errno); ok && errno == syscall.ECONNRESET {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), resetSignatures)
}

func isTimeout(err error) bool {
	if err == context.DeadlineExceeded || err == os.ErrDeadlineExceeded {
		return true
	}
	if to, ok := err.(interface{ Timeout() bool }); ok {
		return to.Timeout()
	}
	return false
}

func isNetworkLevel(err error) bool {
	return anyCause(err, func(e error) bool {
		if nf, ok := e.(NetworkFaulter); ok {
			return nf.NetworkFault()
		}
		_, ok := e.(net.Error)
		return ok
	})
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
