// Package jsonplaceholder provides typed clients for the JSONPlaceholder demo
// API (https://jsonplaceholder.typicode.com) and for a generic resource API.
//
// Both clients sit on top of httpclient.Client, so every call inherits its
// retry policy, timeouts, request IDs and logging. Failures are returned as
// *retry.FinalFailure values unchanged.
package jsonplaceholder
