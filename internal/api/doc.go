// Package api is the typed client for the X API v2. It owns the request
// execution path (authorization, rate-limit tracking, error
// classification), the response envelope types, and a cache of user
// objects collected from response includes.
//
// Error classification: transport failures become NetworkError, 429
// becomes RateLimitedError with the window reset time, other non-2xx
// statuses become APIError. A 401 triggers exactly one forced token
// refresh and one retry when the active strategy supports refreshing.
package api
