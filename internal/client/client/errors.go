package client

import "errors"

// ErrNetwork marks transport failures and unreadable response bodies.
var ErrNetwork = errors.New("network error")

// NetworkErrorBody is the body callers may substitute for a response that
// could not be obtained.
var NetworkErrorBody = []byte(`{"success":false,"error":"Network error"}`)
