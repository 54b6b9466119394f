package models

// Session is everything persisted for a signed-in user.
type Session struct {
	User         *UserProfile
	AccessToken  string
	RefreshToken string
}

// Result is returned by every public auth operation.
type Result struct {
	Success bool
	Error   string
	User    *UserProfile
}

// Succeeded is a successful Result carrying u.
func Succeeded(u *UserProfile) Result {
	return Result{Success: true, User: u}
}

// Failed is a failed Result with a user-facing message.
func Failed(msg string) Result {
	return Result{Error: msg}
}

// State is the observable auth state.
type State struct {
	User            *UserProfile
	IsAuthenticated bool
	IsLoading       bool
}
