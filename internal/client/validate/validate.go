// Package validate checks form input before anything is sent to the backend.
// All functions are pure; the first failing rule wins.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gameclient/internal/client/models"
)

const (
	loginPasswordMin = 4
	nameMin          = 3
	nameMax          = 50
	passwordMin      = 6
	passwordMax      = 50
	referralMin      = 6
)

var (
	tenDigits = regexp.MustCompile(`^[0-9]{10}$`)
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// Validation is the outcome of a check. Error is empty when Valid is true.
type Validation struct {
	Valid bool
	Error string
}

var ok = Validation{Valid: true}

func fail(msg string) Validation {
	return Validation{Error: msg}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// StripSpaces removes every whitespace rune from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Login checks sign-in credentials.
func Login(c models.Credentials) Validation {
	if blank(c.Phone) {
		return fail(MsgPhoneRequired)
	}
	if blank(c.Password) {
		return fail(MsgPasswordRequired)
	}

	phone := StripSpaces(c.Phone)
	if !tenDigits.MatchString(phone) {
		return fail(MsgPhoneInvalid)
	}
	if strings.HasPrefix(phone, "0") {
		return fail(MsgPhoneLeadingZero)
	}

	if length(c.Password) < loginPasswordMin {
		return fail(MsgLoginPasswordMin)
	}

	return ok
}

// Register checks the sign-up form.
func Register(d models.RegisterData) Validation {
	if v := Name(d.Name); !v.Valid {
		return v
	}

	if v := registerPhone(d.Phone); !v.Valid {
		return v
	}

	if v := password(d.Password); !v.Valid {
		return v
	}

	if d.ConfirmPassword != nil {
		if blank(*d.ConfirmPassword) {
			return fail(MsgConfirmRequired)
		}
		if *d.ConfirmPassword != d.Password {
			return fail(MsgPasswordMismatch)
		}
	}

	if v := Email(d.Email); !v.Valid {
		return v
	}

	if !blank(d.ReferralCode) && length(d.ReferralCode) < referralMin {
		return fail(MsgReferralMin)
	}

	return ok
}

// Name checks a display name.
func Name(n string) Validation {
	switch {
	case blank(n):
		return fail(MsgNameRequired)
	case length(n) < nameMin:
		return fail(MsgNameMin)
	case length(n) > nameMax:
		return fail(MsgNameMax)
	}
	return ok
}

// Email accepts a blank address or one containing "@".
func Email(e string) Validation {
	if !blank(e) && !strings.Contains(e, "@") {
		return fail(MsgEmailInvalid)
	}
	return ok
}

// Phone checks a phone number entered outside the sign-up form, e.g. in a
// profile edit. Surrounding and inner whitespace is ignored.
func Phone(p string) Validation {
	return registerPhone(StripSpaces(p))
}

// NewPassword checks a change-password form.
func NewPassword(c models.PasswordChange) Validation {
	if blank(c.OldPassword) {
		return fail(MsgOldPasswordNeeded)
	}
	if v := password(c.NewPassword); !v.Valid {
		return v
	}
	if blank(c.ConfirmPassword) {
		return fail(MsgConfirmRequired)
	}
	if c.ConfirmPassword != c.NewPassword {
		return fail(MsgPasswordMismatch)
	}
	if c.NewPassword == c.OldPassword {
		return fail(MsgPasswordUnchanged)
	}
	return ok
}

// KYC checks an identity verification form. Date of birth is optional.
func KYC(s models.KYCSubmission) Validation {
	if blank(s.DocumentType) {
		return fail(MsgDocumentTypeRequired)
	}
	if blank(s.DocumentNumber) {
		return fail(MsgDocumentNumberRequired)
	}
	if blank(s.FullName) {
		return fail(MsgFullNameRequired)
	}
	if dob := strings.TrimSpace(s.DateOfBirth); dob != "" {
		if _, err := time.Parse(time.DateOnly, dob); err != nil {
			return fail(MsgDateOfBirthInvalid)
		}
	}
	return ok
}

func registerPhone(p string) Validation {
	if blank(p) {
		return fail(MsgPhoneRequired)
	}
	if length(p) != 10 {
		return fail(MsgPhoneLength)
	}
	if !tenDigits.MatchString(p) {
		return fail(MsgPhoneDigits)
	}
	if strings.HasPrefix(p, "0") {
		return fail(MsgPhoneLeadingZero)
	}
	return ok
}

func password(p string) Validation {
	if blank(p) {
		return fail(MsgPasswordRequired)
	}
	if length(p) < passwordMin {
		return fail(MsgPasswordMin)
	}
	if length(p) > passwordMax {
		return fail(MsgPasswordMax)
	}
	if !hasLetter.MatchString(p) || !hasDigit.MatchString(p) {
		return fail(MsgPasswordWeak)
	}
	return ok
}
