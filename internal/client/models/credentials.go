package models

// Credentials are the login form inputs.
type Credentials struct {
	Phone    string
	Password string
}

// RegisterData are the registration form inputs. A nil ConfirmPassword means
// the form has no confirmation field.
type RegisterData struct {
	Name            string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword *string
	ReferralCode    string
}

// KYCSubmission is the identity verification form. DocumentImages holds
// references to already uploaded images.
type KYCSubmission struct {
	DocumentType   string
	DocumentNumber string
	DocumentImages []string
	FullName       string
	DateOfBirth    string
	Address        string
}

// PasswordChange is the change-password form.
type PasswordChange struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}
