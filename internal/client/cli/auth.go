package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readSecret reads a password and returns it as a string, wiping the buffer.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// Register prompts for the sign-up form and creates an account. Validation
// and server messages are printed; only input errors are returned.
func (a *App) Register(ctx context.Context) error {
	var d models.RegisterData
	var err error

	if d.Name, err = a.ask("Username"); err != nil {
		return err
	}
	if d.Phone, err = a.ask("Mobile number"); err != nil {
		return err
	}
	if d.Email, err = a.ask("Email (optional)"); err != nil {
		return err
	}
	if d.Password, err = a.readSecret("Password"); err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}
	d.ConfirmPassword = &confirm
	if d.ReferralCode, err = a.ask("Referral code (optional)"); err != nil {
		return err
	}

	res := a.auth.Register(ctx, d)
	if !res.Success {
		fmt.Fprintln(a.out, "Registration failed:", res.Error)
		return nil
	}
	fmt.Fprintf(a.out, "Welcome, %s! Your account is ready.\n", displayName(res.User))
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	phone, err := a.ask("Mobile number")
	if err != nil {
		return err
	}
	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}

	res := a.auth.Login(ctx, models.Credentials{Phone: phone, Password: password})
	if !res.Success {
		fmt.Fprintln(a.out, "Login failed:", res.Error)
		return nil
	}
	fmt.Fprintln(a.out, "Signed in as", displayName(res.User))
	return nil
}

// Logout clears the stored session. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func displayName(u *models.UserProfile) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Phone
}
