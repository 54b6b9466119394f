package cli

import (
	"context"
)

// getStatus renders the prompt status: the phone of the signed-in user, or
// "guest".
func (a *App) getStatus() string {
	st := a.auth.State()
	switch {
	case st.IsLoading:
		return "(loading)"
	case st.IsAuthenticated:
		return "(" + st.User.Phone + " authenticated)"
	default:
		return "(guest)"
	}
}

// Root prints the banner and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the game client (type 'help' for commands)")
	if u := a.auth.User(); u != nil {
		printlnFn("Signed in as", displayName(u))
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
