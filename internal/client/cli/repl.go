package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
// The real App satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Update(ctx context.Context) error
	Passwd(ctx context.Context) error
	KYC(ctx context.Context) error
	SubmitKYC(ctx context.Context) error
	Referrals(ctx context.Context) error
	RefCode(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: register, login, help, exit"
	helpSigned = "Available commands: whoami, profile, update, passwd, kyc, kycsubmit, referrals, refcode, logout, help, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// The prompt shows statusFn(). The loop ends on EOF or "exit"/"quit".
//
// Commands that need a signed-in user are refused while signed out. Errors
// returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("game %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var handler func(context.Context) error
		needsAuth := true

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSigned)
			} else {
				printlnFn(helpGuest)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "register":
			handler, needsAuth = a.Register, false
		case "login":
			handler, needsAuth = a.Login, false
		case "logout":
			handler, needsAuth = a.Logout, false
		case "whoami":
			handler = a.WhoAmI
		case "profile":
			handler = a.Profile
		case "update":
			handler = a.Update
		case "passwd":
			handler = a.Passwd
		case "kyc":
			handler = a.KYC
		case "kycsubmit":
			handler = a.SubmitKYC
		case "referrals":
			handler = a.Referrals
		case "refcode":
			handler = a.RefCode
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if needsAuth && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := handler(ctx); err != nil {
			printlnFn("Error:", err)
		}
	}
}
