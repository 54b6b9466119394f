package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gameclient/internal/client/models"
)

const placeholderMark = " (placeholder)"

// WhoAmI prints the in-memory profile and the access token expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.auth.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	printProfile(a.out, u)

	info, err := a.auth.AccessTokenInfo(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Token:    unreadable")
		return nil
	}
	if info.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Token:    no expiry")
		return nil
	}
	state := "valid"
	if info.Expired(time.Now()) {
		state = "expired"
	}
	fmt.Fprintf(a.out, "Token:    %s until %s\n", state, info.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// Profile reloads the profile from the server and prints it.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.account.FetchProfile(ctx)
	if err != nil {
		return err
	}
	printProfile(a.out, u)
	return nil
}

// Update edits the profile. Empty answers leave a field unchanged.
func (a *App) Update(ctx context.Context) error {
	var upd models.ProfileUpdate

	for _, f := range []struct {
		prompt string
		dst    **string
	}{
		{"New name (empty to keep)", &upd.Name},
		{"New mobile number (empty to keep)", &upd.Phone},
		{"New email (empty to keep)", &upd.Email},
	} {
		v, err := a.ask(f.prompt)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	if upd.Empty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	res := a.account.UpdateProfile(ctx, upd)
	if !res.Success {
		fmt.Fprintln(a.out, "Update failed:", res.Error)
		return nil
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// Passwd changes the account password.
func (a *App) Passwd(ctx context.Context) error {
	var c models.PasswordChange
	var err error

	if c.OldPassword, err = a.readSecret("Current password"); err != nil {
		return err
	}
	if c.NewPassword, err = a.readSecret("New password"); err != nil {
		return err
	}
	if c.ConfirmPassword, err = a.readSecret("Confirm new password"); err != nil {
		return err
	}

	if err := a.account.ChangePassword(ctx, c); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) KYC(ctx context.Context) error {
	info, err := a.account.KYCStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "KYC status:", info.Status)
	if info.Status == models.KYCRejected && info.RejectionReason != "" {
		fmt.Fprintln(a.out, "Reason:", info.RejectionReason)
	}
	return nil
}

// SubmitKYC prompts for identity documents and sends them for review.
// Image references are comma separated.
func (a *App) SubmitKYC(ctx context.Context) error {
	var s models.KYCSubmission
	var images string

	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Document type", &s.DocumentType},
		{"Document number", &s.DocumentNumber},
		{"Document images (comma separated)", &images},
		{"Full name", &s.FullName},
		{"Date of birth (YYYY-MM-DD, empty to skip)", &s.DateOfBirth},
		{"Address (empty to skip)", &s.Address},
	} {
		v, err := a.ask(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	for _, img := range strings.Split(images, ",") {
		if img = strings.TrimSpace(img); img != "" {
			s.DocumentImages = append(s.DocumentImages, img)
		}
	}

	r, err := a.account.SubmitKYC(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "KYC submitted, status:", r.Status)
	if r.ID != "" {
		fmt.Fprintln(a.out, "Reference:", r.ID)
	}
	return nil
}

func (a *App) Referrals(ctx context.Context) error {
	s, err := a.account.Referrals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Referral code: %s\nReferrals:     %d\nEarnings:      %.2f\n", s.Code, s.Total, s.Earnings)
	return nil
}

// RefCode asks the server for a referral code.
func (a *App) RefCode(ctx context.Context) error {
	code, err := a.account.GenerateReferralCode(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Referral code:", code)
	return nil
}

func printProfile(w io.Writer, u *models.UserProfile) {
	mark := func(field string) string {
		if u.IsSynthesized(field) {
			return placeholderMark
		}
		return ""
	}

	fmt.Fprintf(w, "ID:       %s\n", u.ID)
	fmt.Fprintf(w, "Name:     %s%s\n", u.Name, mark(models.FieldName))
	fmt.Fprintf(w, "Mobile:   %s%s\n", u.Phone, mark(models.FieldPhone))
	if u.Email != "" {
		fmt.Fprintf(w, "Email:    %s\n", u.Email)
	}
	fmt.Fprintf(w, "KYC:      %s%s\n", u.KYCStatus, mark(models.FieldKYCStatus))
	fmt.Fprintf(w, "Referral: %s%s\n", u.ReferralCode, mark(models.FieldReferralCode))
	fmt.Fprintf(w, "Balance:  %.2f\n", u.WalletBalance)
	fmt.Fprintf(w, "Joined:   %s%s\n", u.JoinedAt.Format("2006-01-02"), mark(models.FieldJoinedAt))
}
