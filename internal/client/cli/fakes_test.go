package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/client/services"
	"github.com/dmitrijs2005/gameclient/internal/client/tokens"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

type fakeAuth struct {
	user    *models.UserProfile
	loading bool

	loginCreds   models.Credentials
	loginRes     models.Result
	registerData models.RegisterData
	registerRes  models.Result
	logoutCalled bool

	tokenInfo tokens.Info
	tokenErr  error
}

func (f *fakeAuth) Init(context.Context)                                 { f.loading = false }
func (f *fakeAuth) CheckAuthStatus(context.Context) *models.UserProfile { return f.user }

func (f *fakeAuth) Login(_ context.Context, c models.Credentials) models.Result {
	f.loginCreds = c
	if f.loginRes.Success {
		f.user = f.loginRes.User
	}
	return f.loginRes
}

func (f *fakeAuth) Register(_ context.Context, d models.RegisterData) models.Result {
	f.registerData = d
	if f.registerRes.Success {
		f.user = f.registerRes.User
	}
	return f.registerRes
}

func (f *fakeAuth) Logout(context.Context) models.Result {
	f.logoutCalled = true
	f.user = nil
	return models.Result{Success: true}
}

func (f *fakeAuth) UpdateProfile(context.Context, models.ProfileUpdate) models.Result {
	return models.Failed(services.MsgNotAuthenticated)
}

func (f *fakeAuth) RefreshUser(context.Context, *client.UserPayload) (*models.UserProfile, error) {
	return f.user, nil
}

func (f *fakeAuth) State() models.State {
	return models.State{User: f.user, IsAuthenticated: f.user.Authenticated(), IsLoading: f.loading}
}

func (f *fakeAuth) User() *models.UserProfile { return f.user.Clone() }
func (f *fakeAuth) IsAuthenticated() bool     { return f.user.Authenticated() }
func (f *fakeAuth) IsLoading() bool           { return f.loading }

func (f *fakeAuth) RequireAuth() error {
	if !f.IsAuthenticated() {
		return services.ErrNotAuthenticated
	}
	return nil
}

func (f *fakeAuth) Subscribe(func(models.State)) func() { return func() {} }

func (f *fakeAuth) AccessTokenInfo(context.Context) (tokens.Info, error) {
	return f.tokenInfo, f.tokenErr
}

type fakeAccount struct {
	profile    *models.UserProfile
	profileErr error

	update    models.ProfileUpdate
	updateRes models.Result

	passwd    models.PasswordChange
	passwdErr error

	kyc       *services.KYCInfo
	kycSub    models.KYCSubmission
	receipt   *services.KYCReceipt
	referrals *services.ReferralSummary
	code      string
	err       error
}

func (f *fakeAccount) FetchProfile(context.Context) (*models.UserProfile, error) {
	return f.profile, f.profileErr
}

func (f *fakeAccount) UpdateProfile(_ context.Context, upd models.ProfileUpdate) models.Result {
	f.update = upd
	return f.updateRes
}

func (f *fakeAccount) ChangePassword(_ context.Context, c models.PasswordChange) error {
	f.passwd = c
	return f.passwdErr
}

func (f *fakeAccount) KYCStatus(context.Context) (*services.KYCInfo, error) { return f.kyc, f.err }

func (f *fakeAccount) SubmitKYC(_ context.Context, s models.KYCSubmission) (*services.KYCReceipt, error) {
	f.kycSub = s
	return f.receipt, f.err
}

func (f *fakeAccount) Referrals(context.Context) (*services.ReferralSummary, error) {
	return f.referrals, f.err
}

func (f *fakeAccount) GenerateReferralCode(context.Context) (string, error) { return f.code, f.err }

// newTestApp builds an App over fakes that reads the given lines as input.
func newTestApp(auth *fakeAuth, acc *fakeAccount, lines ...string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		auth:    auth,
		account: acc,
		log:     logging.Discard(),
		reader:  bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n")),
		out:     out,
	}, out
}

// stubPasswords makes getPassword return the given passwords in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func signedIn() *models.UserProfile {
	return &models.UserProfile{ID: "1", Name: "Ann", Phone: "9876543210", KYCStatus: models.KYCPending}
}
