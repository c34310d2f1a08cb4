package retry

import "errors"

// FinalFailure is the terminal outcome of a logical call that did not succeed.
// Its message is the message of the last observed failure and Unwrap exposes
// that failure, so callers can inspect the root cause with errors.Is/As.
type FinalFailure struct {
	Tag      FaultTag
	Attempts int
	Err      error
}

func (f *FinalFailure) Error() string {
	if f.Err == nil {
		return string(f.Tag)
	}
	return f.Err.Error()
}

func (f *FinalFailure) Unwrap() error {
	return f.Err
}

// TagOf returns the terminal tag of err when it is a FinalFailure and falls
// back to Classify otherwise.
func TagOf(err error) FaultTag {
	var ff *FinalFailure
	if errors.As(err, &ff) {
		return ff.Tag
	}
	return Classify(err)
}
