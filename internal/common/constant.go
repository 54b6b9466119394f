// Package common contains shared constants and sentinel errors used across
// the gameclient components.
package common

// Outbound HTTP header names.
const (
	AuthorizationHeaderName = "Authorization"
	ContentTypeHeaderName   = "Content-Type"
	RequestIDHeaderName     = "X-Request-ID"

	BearerPrefix    = "Bearer "
	ContentTypeJSON = "application/json"
)

// Session storage keys. LegacyAuthTokenKey and LegacyAuthTokenCamelKey are
// written by older app builds; they are still read as access token fallbacks
// and always removed on logout.
const (
	UserDataKey             = "user_data"
	AccessTokenKey          = "access_token"
	RefreshTokenKey         = "refresh_token"
	LegacyAuthTokenKey      = "auth_token"
	LegacyAuthTokenCamelKey = "authToken"
)

// SessionKeys lists every key that belongs to a session.
var SessionKeys = []string{
	UserDataKey,
	AccessTokenKey,
	RefreshTokenKey,
	LegacyAuthTokenKey,
	LegacyAuthTokenCamelKey,
}

// Backend endpoints, relative to the configured base URL.
const (
	LoginPath          = "/api/login/"
	RegisterPath       = "/api/register/"
	TokenRefreshPath   = "/token/refresh/"
	ProfilePath        = "/api/profile/"
	ChangePasswordPath = "/api/change-password/"
	KYCStatusPath      = "/api/kyc/status/"
	KYCSubmitPath      = "/api/kyc/submit/"
	ReferralsPath      = "/api/referrals/"
	ReferralCodePath   = "/api/referrals/generate-code/"
)
