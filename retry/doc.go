// Package retry decides whether, how many times and after how long a failed
// outbound call is attempted again.
//
// Classification
//   - Classify maps an error to a FaultTag by walking its cause chain.
//   - 5xx responses are TransientServer, 429 is RateLimited.
//   - Connection resets anywhere in the chain are TransientNetwork.
//   - Deadlines and socket timeouts are Timeout.
//   - Refused connections, unreachable hosts and DNS failures are TransientNetwork.
//   - Everything else is Permanent and is never retried.
//
// Backoff Strategy
//   - delay = InitialBackoff * 2^(attempt-1), capped at MaxBackoff.
//   - Jitter scales the delay by 1 ± JitterFraction and the result is
//     clamped back into [0, MaxBackoff].
//
// Execution
//   - Do runs a call up to MaxAttempts times and reports every transition
//     to a Sink.
//   - Waiting between attempts selects on a timer and ctx.Done(), so a
//     cancelled context aborts the pending attempt.
//   - When the budget is spent the last failure is returned inside a
//     FinalFailure whose message is the original error message.
package retry
