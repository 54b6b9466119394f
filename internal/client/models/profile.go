package models

import (
	"slices"
	"strings"
	"time"
)

// KYCStatus is the know-your-customer state of an account.
type KYCStatus string

const (
	KYCVerified KYCStatus = "VERIFIED"
	KYCPending  KYCStatus = "PENDING"
	KYCRejected KYCStatus = "REJECTED"
)

// ParseKYCStatus normalizes a server value; anything unknown is PENDING.
func ParseKYCStatus(s string) KYCStatus {
	switch KYCStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case KYCVerified:
		return KYCVerified
	case KYCRejected:
		return KYCRejected
	default:
		return KYCPending
	}
}

// Names used in UserProfile.SynthesizedFields.
const (
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldReferralCode = "referralCode"
	FieldKYCStatus    = "kycStatus"
	FieldJoinedAt     = "joinedAt"
)

// UserProfile is the identity and display record of the signed-in user.
type UserProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	ReferralCode  string    `json:"referralCode"`
	KYCStatus     KYCStatus `json:"kycStatus"`
	WalletBalance float64   `json:"walletBalance"`
	IsVerified    bool      `json:"isVerified"`
	JoinedAt      time.Time `json:"joinedAt"`

	// SynthesizedFields lists fields filled in by the client because the
	// server omitted them. Their values are placeholders only.
	SynthesizedFields []string `json:"synthesizedFields,omitempty"`

	// IsNewUser is set after a successful registration and lives in memory only.
	IsNewUser bool `json:"-"`
}

// Authenticated reports whether p identifies a signed-in user.
func (p *UserProfile) Authenticated() bool {
	return p != nil && p.ID != "" && p.Phone != ""
}

// IsSynthesized reports whether field was filled in by the client.
func (p *UserProfile) IsSynthesized(field string) bool {
	return p != nil && slices.Contains(p.SynthesizedFields, field)
}

// MarkSynthesized records field as client-filled. Duplicates are ignored.
func (p *UserProfile) MarkSynthesized(field string) {
	if !slices.Contains(p.SynthesizedFields, field) {
		p.SynthesizedFields = append(p.SynthesizedFields, field)
	}
}

// ClearSynthesized drops field from the synthesized list.
func (p *UserProfile) ClearSynthesized(field string) {
	p.SynthesizedFields = slices.DeleteFunc(p.SynthesizedFields, func(f string) bool { return f == field })
	if len(p.SynthesizedFields) == 0 {
		p.SynthesizedFields = nil
	}
}

// Clone returns a deep copy; nil stays nil.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.SynthesizedFields = slices.Clone(p.SynthesizedFields)
	return &c
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string
	Phone *string
	Email *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Email == nil
}

// Apply returns a copy of p with the update merged in. Fields set by the
// update are no longer considered synthesized.
func (p *UserProfile) Apply(u ProfileUpdate) *UserProfile {
	c := p.Clone()
	if u.Name != nil {
		c.Name = strings.TrimSpace(*u.Name)
		c.ClearSynthesized(FieldName)
	}
	if u.Phone != nil {
		c.Phone = strings.Join(strings.Fields(*u.Phone), "")
		c.ClearSynthesized(FieldPhone)
	}
	if u.Email != nil {
		c.Email = strings.TrimSpace(*u.Email)
	}
	return c
}
