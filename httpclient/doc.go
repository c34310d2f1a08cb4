// Package httpclient provides the outbound HTTP client used to call
// downstream REST APIs. Every logical call runs through a retry.Executor,
// so transient failures are retried with capped exponential backoff and
// callers only ever see the terminal outcome.
//
// Retries
//   - Controlled via Builder.WithRetryConfig(retry.Config).
//   - Retries occur on connection resets, network-level failures, timeouts,
//     HTTP 5xx and HTTP 429 responses (see retry.Classify).
//   - Other 4xx responses, validation and interceptor errors are not retried.
//   - Failures are returned as *retry.FinalFailure carrying the fault tag and
//     the last observed error.
//
// Timeouts
//   - Connect bounds TCP connection establishment.
//   - ResponseTotal bounds one physical attempt: request write, headers and
//     the full body read.
//   - Read and Write bound each individual socket read or write.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each attempt.
//   - Response bodies larger than Config.MaxResponseBytes are rejected.
package httpclient
