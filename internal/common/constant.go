package common

// RequestIDHeaderName is the HTTP header used to correlate client log lines
// with server-side request logs.
const RequestIDHeaderName = "X-Request-ID"

// SessionCookieName is the cookie the API uses to carry the folder access
// grant. The client never reads it; the cookie jar forwards it.
const SessionCookieName = "session"
