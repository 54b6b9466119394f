// Package tokens reads the claims of stored access tokens. Signatures are not
// verified: the client has no key and only uses the claims for display and
// diagnostics.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gameclient/internal/common"
)

// Claims are the claims issued by the backend's token endpoint.
type Claims struct {
	jwt.RegisteredClaims
	UserID    FlexID `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

// Info is what the client knows about a token without verifying it.
type Info struct {
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now. Tokens
// without an exp claim never expire.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect parses token without verifying its signature.
func Inspect(token string) (Info, error) {
	if token == "" {
		return Info{}, common.ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	info := Info{UserID: string(claims.UserID)}
	if info.UserID == "" {
		info.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// CheckExpiry returns common.ErrTokenExpired when token is expired at now.
func CheckExpiry(token string, now time.Time) error {
	info, err := Inspect(token)
	if err != nil {
		return err
	}
	if info.Expired(now) {
		return common.ErrTokenExpired
	}
	return nil
}

// IsExpired is CheckExpiry reduced to a bool; unreadable tokens count as
// not expired since only the server can judge them.
func IsExpired(token string, now time.Time) bool {
	return errors.Is(CheckExpiry(token, now), common.ErrTokenExpired)
}
