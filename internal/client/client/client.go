package client

import "context"

// Client is the backend API contract used by the auth and account services.
//
// HTTP error statuses are not errors: they come back as a *Response. An error
// is returned only when no usable response was obtained; such errors wrap
// ErrNetwork.
type Client interface {
	Get(ctx context.Context, endpoint string) (*Response, error)
	Post(ctx context.Context, endpoint string, body any) (*Response, error)
	Put(ctx context.Context, endpoint string, body any) (*Response, error)
	Delete(ctx context.Context, endpoint string) (*Response, error)

	// Login and Register are sent without a bearer token and never refresh.
	Login(ctx context.Context, req LoginRequest) (*Response, error)
	Register(ctx context.Context, req RegisterRequest) (*Response, error)
}

// TokenSource supplies and updates the tokens the client sends.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
}
