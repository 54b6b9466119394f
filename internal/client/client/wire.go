package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type LoginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username     string `json:"username"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthPayload is the body of a successful login or registration.
type AuthPayload struct {
	User    *UserPayload `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

// UserPayload is the backend's user representation. The auth endpoints and
// the profile endpoint name some fields differently; both spellings are kept.
type UserPayload struct {
	ID            FlexString `json:"id"`
	Username      string     `json:"username"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Mobile        string     `json:"mobile"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	KYCStatus     string     `json:"kyc_status"`
	ReferralCode  string     `json:"referral_code"`
	WalletBalance *FlexFloat `json:"wallet_balance"`
	IsVerified    *bool      `json:"is_verified"`
	CreatedAt     string     `json:"created_at"`
	DateJoined    string     `json:"date_joined"`
}

// ProfileUpdateRequest is the body of PUT /api/profile/.
type ProfileUpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type KYCStatusPayload struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

type KYCSubmitRequest struct {
	DocumentType   string          `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	DocumentImages []string        `json:"document_images"`
	PersonalInfo   KYCPersonalInfo `json:"personal_info"`
}

type KYCPersonalInfo struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address,omitempty"`
}

type KYCSubmitPayload struct {
	ID     FlexString `json:"id"`
	Status string     `json:"status"`
}

type ReferralsPayload struct {
	ReferralCode   string          `json:"referral_code"`
	TotalReferrals int             `json:"total_referrals"`
	TotalEarnings  FlexFloat       `json:"total_earnings"`
	Referrals      json.RawMessage `json:"referrals"`
}

type ReferralCodePayload struct {
	ReferralCode string `json:"referral_code"`
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexFloat accepts a JSON number or a numeric string, as sent for decimals.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("flex float: %w", err)
		}
		*f = FlexFloat(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	*f = FlexFloat(n)
	return nil
}
