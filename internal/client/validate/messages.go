package validate

// User-facing validation messages.
const (
	MsgPhoneRequired     = "Mobile number is required"
	MsgPhoneInvalid      = "Enter a valid 10 digit mobile number"
	MsgPhoneLength       = "Mobile number must be exactly 10 digits"
	MsgPhoneDigits       = "Mobile number must contain digits only"
	MsgPhoneLeadingZero  = "Mobile number cannot start with 0"
	MsgPasswordRequired  = "Password is required"
	MsgLoginPasswordMin  = "Password must be at least 4 characters"
	MsgPasswordMin       = "Password must be at least 6 characters"
	MsgPasswordMax       = "Password must be less than 50 characters"
	MsgPasswordWeak      = "Password must contain at least one letter and one number"
	MsgConfirmRequired   = "Please confirm your password"
	MsgPasswordMismatch  = "Password and Confirm Password do not match"
	MsgNameRequired      = "Username is required"
	MsgNameMin           = "Username must be at least 3 characters"
	MsgNameMax           = "Username must be less than 50 characters"
	MsgEmailInvalid      = "Enter a valid email address"
	MsgReferralMin       = "Referral code must be at least 6 characters"
	MsgOldPasswordNeeded = "Current password is required"
	MsgPasswordUnchanged = "New password must differ from the current one"
)

// KYC form messages.
const (
	MsgDocumentTypeRequired   = "Document type is required"
	MsgDocumentNumberRequired = "Document number is required"
	MsgFullNameRequired       = "Full name is required"
	MsgDateOfBirthInvalid     = "Date of birth must be in YYYY-MM-DD format"
)
