package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gameclient/internal/client/session"
	"github.com/dmitrijs2005/gameclient/internal/client/validate"
	"github.com/dmitrijs2005/gameclient/internal/common"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

var _ SessionStore = (*session.Store)(nil)

func TestNewAuthService_StartsLoading(t *testing.T) {
	svc := newAuth(t, &fakeClient{}, &fakeStore{})

	st := svc.State()
	assert.True(t, st.IsLoading)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
}

func TestLogin_Success(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)

	res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})

	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.User)
	assert.Equal(t, "1", res.User.ID)
	assert.Equal(t, "9876543210", res.User.Phone)
	assert.False(t, res.User.IsNewUser)

	require.NotNil(t, store.Session())
	assert.Equal(t, "a", store.Session().AccessToken)
	assert.Equal(t, "r", store.Session().RefreshToken)

	assert.True(t, svc.IsAuthenticated())
	assert.False(t, svc.IsLoading())

	calls := fc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, common.LoginPath, calls[0].Endpoint)
	assert.Equal(t, client.LoginRequest{Mobile: "9876543210", Password: "abcd"}, calls[0].Body)
}

func TestLogin_SendsStrippedPhone(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
	svc := newAuth(t, fc, &fakeStore{})

	res := svc.Login(context.Background(), models.Credentials{Phone: " 98765 43210 ", Password: "abcd"})
	require.True(t, res.Success, res.Error)

	assert.Equal(t, "9876543210", fc.Calls()[0].Body.(client.LoginRequest).Mobile)
}

func TestLogin_SynthesizedFieldsAreMarked(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
	svc := newAuth(t, fc, &fakeStore{})

	res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	require.True(t, res.Success, res.Error)

	u := res.User
	assert.False(t, u.IsSynthesized(models.FieldPhone))
	assert.True(t, u.IsSynthesized(models.FieldReferralCode))
	assert.True(t, u.IsSynthesized(models.FieldKYCStatus))
	assert.True(t, u.IsSynthesized(models.FieldJoinedAt))
	assert.Regexp(t, `^REF[0-9A-Z]{6}$`, u.ReferralCode)
	assert.Equal(t, models.KYCPending, u.KYCStatus)
	assert.Equal(t, fixedNow, u.JoinedAt)
}

func TestLogin_ValidationFailsWithoutNetwork(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)

	res := svc.Login(context.Background(), models.Credentials{Phone: "0987654321", Password: "abcd"})

	assert.False(t, res.Success)
	assert.Equal(t, validate.MsgPhoneLeadingZero, res.Error)
	assert.Empty(t, fc.Calls())
	assert.Zero(t, store.Touches())
}

func TestBadPhonesNeverReachTheBackend(t *testing.T) {
	phones := []string{"", "123", "12345678901", "98765x3210", "0987654321", "+919876543210"}

	for _, p := range phones {
		fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
		svc := newAuth(t, fc, &fakeStore{})

		lr := svc.Login(context.Background(), models.Credentials{Phone: p, Password: "abcd"})
		rr := svc.Register(context.Background(), models.RegisterData{
			Name: "Player", Phone: p, Password: "abc123", ConfirmPassword: strPtr("abc123"),
		})

		assert.False(t, lr.Success, "login accepted %q", p)
		assert.False(t, rr.Success, "register accepted %q", p)
		assert.Empty(t, fc.Calls(), "phone %q reached the backend", p)
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
		want   string
	}{
		{"unauthorized hides server text", http.StatusUnauthorized, `{"error":"no such user"}`, nil, MsgInvalidCredentials},
		{"bad request with message", http.StatusBadRequest, `{"error":"Mobile not found"}`, nil, "Mobile not found"},
		{"bad request without message", http.StatusBadRequest, `{}`, nil, MsgLoginBadRequest},
		{"bad request ignores detail", http.StatusBadRequest, `{"detail":"x"}`, nil, MsgLoginBadRequest},
		{"forbidden with message", http.StatusForbidden, `{"error":"Suspended until May"}`, nil, "Suspended until May"},
		{"forbidden without message", http.StatusForbidden, `{}`, nil, MsgAccountBlocked},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, nil, MsgLoginFailed},
		{"ok without access token", http.StatusOK, `{"user":{"id":"1"}}`, nil, MsgLoginFailed},
		{"ok without user id", http.StatusOK, `{"user":{"mobile":"9876543210"},"access":"a"}`, nil, MsgLoginFailed},
		{"ok without user", http.StatusOK, `{"access":"a"}`, nil, MsgLoginFailed},
		{"transport", 0, "", fmt.Errorf("%w: dial tcp", client.ErrNetwork), MsgNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{respond: func(call) (*client.Response, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return jsonResp(tt.status, tt.body), nil
			}}
			store := &fakeStore{}
			svc := newAuth(t, fc, store)

			res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})

			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)
			assert.Nil(t, store.Session())
			assert.False(t, svc.IsAuthenticated())
			assert.False(t, svc.IsLoading())
		})
	}
}

func TestLogin_PersistFailureKeepsSession(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusOK, loginOK)}
	svc := newAuth(t, fc, &fakeStore{persistErr: errors.New("disk full")})

	res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})

	assert.True(t, res.Success)
	assert.True(t, svc.IsAuthenticated())
}

func TestRegister_PasswordMismatchWithoutNetwork(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc, &fakeStore{})

	res := svc.Register(context.Background(), models.RegisterData{
		Name:            "Player One",
		Phone:           "9876543210",
		Password:        "abc123",
		ConfirmPassword: strPtr("abc124"),
	})

	assert.False(t, res.Success)
	assert.Equal(t, validate.MsgPasswordMismatch, res.Error)
	assert.Empty(t, fc.Calls())
}

func TestRegister_Success(t *testing.T) {
	fc := &fakeClient{respond: reply(http.StatusCreated,
		`{"user":{"id":7,"username":"Player One","mobile":"9876543210","referral_code":"ABC123"},"access":"a","refresh":"r"}`)}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)

	res := svc.Register(context.Background(), models.RegisterData{
		Name:            " Player One ",
		Phone:           "9876543210",
		Email:           "p1@example.com",
		Password:        "abc123",
		ConfirmPassword: strPtr("abc123"),
		ReferralCode:    "FRIEND1",
	})

	require.True(t, res.Success, res.Error)
	assert.True(t, res.User.IsNewUser)
	assert.Equal(t, "7", res.User.ID)
	assert.Equal(t, "Player One", res.User.Name)
	assert.Equal(t, "p1@example.com", res.User.Email)
	assert.Equal(t, "ABC123", res.User.ReferralCode)
	assert.False(t, res.User.IsSynthesized(models.FieldReferralCode))
	assert.True(t, svc.User().IsNewUser)

	assert.Equal(t, client.RegisterRequest{
		Username:     "Player One",
		Mobile:       "9876543210",
		Email:        "p1@example.com",
		Password:     "abc123",
		ReferralCode: "FRIEND1",
	}, fc.Calls()[0].Body)

	raw, err := json.Marshal(store.Session().User)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "IsNewUser")
	assert.NotContains(t, string(raw), "isNewUser")
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request error", http.StatusBadRequest, `{"error":"Email taken"}`, "Email taken"},
		{"bad request detail", http.StatusBadRequest, `{"detail":"Weak password"}`, "Weak password"},
		{"bad request empty", http.StatusBadRequest, `{}`, MsgRegisterBadRequest},
		{"conflict", http.StatusConflict, `{"error":"exists"}`, MsgPhoneTaken},
		{"server error", http.StatusBadGateway, `{}`, MsgRegisterFailed},
		{"ok without token uses detail", http.StatusOK, `{"detail":"Pending approval"}`, "Pending approval"},
		{"ok without token", http.StatusOK, `{"user":{"id":"1"}}`, MsgRegistrationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{respond: reply(tt.status, tt.body)}
			svc := newAuth(t, fc, &fakeStore{})

			res := svc.Register(context.Background(), models.RegisterData{
				Name: "Player", Phone: "9876543210", Password: "abc123",
			})

			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)
			assert.False(t, svc.IsAuthenticated())
		})
	}
}

func TestLogout(t *testing.T) {
	fc := &fakeClient{}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)
	signIn(t, svc, fc)

	res := svc.Logout(context.Background())

	assert.True(t, res.Success)
	assert.Nil(t, store.Session())
	assert.False(t, svc.IsAuthenticated())
	assert.False(t, svc.IsLoading())
	assert.Nil(t, svc.User())
}

func TestLogout_SucceedsWhenStorageFails(t *testing.T) {
	for name, store := range map[string]*fakeStore{
		"error": {clearErr: errors.New("locked")},
		"panic": {clearPanic: true},
	} {
		t.Run(name, func(t *testing.T) {
			fc := &fakeClient{}
			svc := newAuth(t, fc, store)
			signIn(t, svc, fc)

			res := svc.Logout(context.Background())

			assert.True(t, res.Success)
			assert.False(t, svc.IsAuthenticated())
			assert.Nil(t, svc.User())
		})
	}
}

func TestUpdateProfile_Unauthenticated(t *testing.T) {
	store := &fakeStore{}
	svc := newAuth(t, &fakeClient{}, store)

	res := svc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: strPtr("New Name")})

	assert.False(t, res.Success)
	assert.Equal(t, "User not authenticated", res.Error)
	assert.Zero(t, store.Touches())
}

func TestUpdateProfile_Success(t *testing.T) {
	fc := &fakeClient{}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)
	signIn(t, svc, fc)

	res := svc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: strPtr("  New Name "), Email: strPtr("n@e.io")})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "New Name", res.User.Name)
	assert.Equal(t, "New Name", svc.User().Name)
	assert.Equal(t, "n@e.io", store.Session().User.Email)
	assert.True(t, svc.IsAuthenticated())
	assert.Empty(t, fc.Calls())
}

func TestUpdateProfile_Rejected(t *testing.T) {
	tests := []struct {
		name string
		upd  models.ProfileUpdate
		save error
		want string
	}{
		{"bad phone", models.ProfileUpdate{Phone: strPtr("0123456789")}, nil, validate.MsgPhoneLeadingZero},
		{"empty name", models.ProfileUpdate{Name: strPtr(" ")}, nil, validate.MsgNameRequired},
		{"bad email", models.ProfileUpdate{Email: strPtr("nope")}, nil, validate.MsgEmailInvalid},
		{"storage failure", models.ProfileUpdate{Name: strPtr("New Name")}, errors.New("disk full"), MsgProfileUpdateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			store := &fakeStore{}
			svc := newAuth(t, fc, store)
			before := signIn(t, svc, fc)
			store.saveErr = tt.save

			res := svc.UpdateProfile(context.Background(), tt.upd)

			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)
			assert.Equal(t, before, svc.User())
		})
	}
}

func TestCheckAuthStatus_ReturnsPersistedProfile(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(metadata.NewSQLiteRepository(db), nil, logging.Discard())

	fc := &fakeClient{respond: reply(http.StatusOK,
		`{"user":{"id":"1","mobile":"9876543210","first_name":"Ann","kyc_status":"VERIFIED","wallet_balance":"10.5"},"access":"a","refresh":"r"}`)}
	svc := newAuth(t, fc, store)
	res := svc.Login(ctx, models.Credentials{Phone: "9876543210", Password: "abcd"})
	require.True(t, res.Success, res.Error)

	idle := &fakeClient{}
	restarted := newAuth(t, idle, store)
	got := restarted.CheckAuthStatus(ctx)

	require.NotNil(t, got)
	assert.Equal(t, res.User, got)

	restarted.Init(ctx)
	assert.True(t, restarted.IsAuthenticated())
	assert.False(t, restarted.IsLoading())
	assert.Empty(t, idle.Calls())
}

// brokenMirror fails every call, like an unreachable Redis.
type brokenMirror struct{}

var errMirrorDown = errors.New("mirror down")

func (brokenMirror) Get(context.Context, string) ([]byte, error) { return nil, errMirrorDown }
func (brokenMirror) Set(context.Context, string, []byte) error { return errMirrorDown }
func (brokenMirror) SetAll(context.Context, map[string][]byte) error { return errMirrorDown }
func (brokenMirror) DeleteKeys(context.Context, ...string) error { return errMirrorDown }

func TestUpdateProfile_MirrorFailureKeepsStoreAndMemoryInSync(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(metadata.NewSQLiteRepository(db), brokenMirror{}, logging.Discard())
	fc := &fakeClient{}
	svc := newAuth(t, fc, store)
	signIn(t, svc, fc)

	res := svc.UpdateProfile(ctx, models.ProfileUpdate{Name: strPtr("New Name")})
	require.True(t, res.Success, res.Error)

	stored, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, svc.User(), stored.User)

	restarted := newAuth(t, &fakeClient{}, store)
	assert.Equal(t, svc.User(), restarted.CheckAuthStatus(ctx))
}

func TestInit(t *testing.T) {
	user := &models.UserProfile{ID: "1", Phone: "9876543210", Name: "Ann"}

	tests := []struct {
		name     string
		store    *fakeStore
		wantAuth bool
	}{
		{"nothing stored", &fakeStore{}, false},
		{"profile and token", &fakeStore{sess: &models.Session{User: user, AccessToken: "a"}}, true},
		{"profile without token", &fakeStore{sess: &models.Session{User: user}}, false},
		{"profile without phone", &fakeStore{sess: &models.Session{User: &models.UserProfile{ID: "1"}, AccessToken: "a"}}, false},
		{"read error", &fakeStore{readErr: errors.New("corrupt")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuth(t, &fakeClient{}, tt.store)
			var states []models.State
			svc.Subscribe(func(st models.State) { states = append(states, st) })

			svc.Init(context.Background())

			assert.Equal(t, tt.wantAuth, svc.IsAuthenticated())
			assert.False(t, svc.IsLoading())
			require.NotEmpty(t, states)
			assert.False(t, states[len(states)-1].IsLoading)
			if tt.wantAuth {
				assert.Equal(t, "Ann", svc.User().Name)
			}
		})
	}
}

func TestIsAuthenticatedFollowsProfile(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc, &fakeStore{})

	var mu sync.Mutex
	var states []models.State
	svc.Subscribe(func(st models.State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	svc.Init(context.Background())
	signIn(t, svc, fc)
	svc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: strPtr("Someone")})
	svc.Logout(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	for i, st := range states {
		assert.Equal(t, st.User.Authenticated(), st.IsAuthenticated, "state %d", i)
	}
	assert.True(t, states[1].IsLoading, "login raises the loading flag")
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc, &fakeStore{})

	n := 0
	cancel := svc.Subscribe(func(models.State) { n++ })
	svc.Init(context.Background())
	require.Equal(t, 1, n)

	cancel()
	cancel()
	signIn(t, svc, fc)
	assert.Equal(t, 1, n)
}

func TestGuard_RejectsConcurrentCalls(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fc := &fakeClient{respond: func(call) (*client.Response, error) {
		close(started)
		<-release
		return jsonResp(http.StatusOK, loginOK), nil
	}}
	svc := newAuth(t, fc, &fakeStore{})

	done := make(chan models.Result)
	go func() {
		done <- svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	}()
	<-started

	second := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	reg := svc.Register(context.Background(), models.RegisterData{Name: "Player", Phone: "9876543210", Password: "abc123"})
	assert.Equal(t, MsgBusy, second.Error)
	assert.Equal(t, MsgBusy, reg.Error)
	assert.True(t, svc.IsLoading())

	close(release)
	first := <-done
	assert.True(t, first.Success, first.Error)
	assert.Len(t, fc.Calls(), 1)

	upd := svc.UpdateProfile(context.Background(), models.ProfileUpdate{Name: strPtr("After Login")})
	assert.True(t, upd.Success, "guard is released after the call returns")
}

func TestPanicIsReportedAsNetworkError(t *testing.T) {
	fc := &fakeClient{respond: func(call) (*client.Response, error) {
		panic("unexpected")
	}}
	svc := newAuth(t, fc, &fakeStore{})

	res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgNetwork, res.Error)
	assert.False(t, svc.IsLoading())

	fc.respond = reply(http.StatusOK, loginOK)
	res = svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	assert.True(t, res.Success, res.Error)
}

func TestRefreshUser(t *testing.T) {
	fc := &fakeClient{}
	store := &fakeStore{}
	svc := newAuth(t, fc, store)

	_, err := svc.RefreshUser(context.Background(), &client.UserPayload{ID: "1"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	signIn(t, svc, fc)

	_, err = svc.RefreshUser(context.Background(), &client.UserPayload{ID: "2"})
	assert.ErrorIs(t, err, ErrUserMismatch)

	got, err := svc.RefreshUser(context.Background(), &client.UserPayload{KYCStatus: "verified", ReferralCode: "SRV001"})
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, models.KYCVerified, got.KYCStatus)
	assert.Equal(t, "SRV001", store.Session().User.ReferralCode)
	assert.False(t, got.IsSynthesized(models.FieldKYCStatus))
	assert.False(t, got.IsSynthesized(models.FieldReferralCode))
	assert.True(t, got.IsSynthesized(models.FieldJoinedAt))
}

func TestRequireAuth(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc, &fakeStore{})
	assert.ErrorIs(t, svc.RequireAuth(), ErrNotAuthenticated)

	signIn(t, svc, fc)
	assert.NoError(t, svc.RequireAuth())
}

func TestAccessTokenInfo(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	store := &fakeStore{sess: &models.Session{User: &models.UserProfile{ID: "1", Phone: "9876543210"}, AccessToken: tok}}
	svc := newAuth(t, &fakeClient{}, store)

	info, err := svc.AccessTokenInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", info.UserID)
	assert.True(t, info.ExpiresAt.Equal(exp))

	store.sess.AccessToken = "opaque"
	_, err = svc.AccessTokenInfo(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
