package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUserMismatch     = errors.New("profile belongs to another user")
	ErrMissingUserID    = errors.New("server response has no user id")
	ErrRequestFailed    = errors.New("request failed")
	ErrValidation       = errors.New("invalid input")
)

// User-facing result messages.
const (
	MsgNetwork             = "Network error. Please check your internet connection."
	MsgBusy                = "Another request is already in progress"
	MsgInvalidCredentials  = "Invalid mobile number or password. Please check and try again."
	MsgLoginBadRequest     = "Login details are incorrect."
	MsgAccountBlocked      = "Your account is blocked. Please contact support."
	MsgLoginFailed         = "Login failed. Please try again later."
	MsgRegisterBadRequest  = "Registration could not be completed."
	MsgPhoneTaken          = "This mobile number is already registered."
	MsgRegisterFailed      = "Registration failed. Please try again later."
	MsgRegistrationFailed  = "Registration failed"
	MsgNotAuthenticated    = "User not authenticated"
	MsgProfileUpdateFailed = "Profile update failed"
	MsgProfileFetchFailed  = "Failed to get profile"
	MsgPasswordFailed      = "Failed to change password"
	MsgKYCSubmitFailed     = "KYC submission failed"
)
