// Package services holds the client's application services: the auth state
// service that owns the signed-in user, and the account service that talks to
// the profile endpoints on its behalf.
package services

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/client/tokens"
	"github.com/dmitrijs2005/gameclient/internal/client/validate"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

// AuthService owns the authentication state of the client.
//
// Contract:
//   - Init: silent restore from the session store; clears the loading flag.
//   - CheckAuthStatus: the stored profile, if a restorable session exists.
//   - Login / Register: validate, call the backend, persist, authenticate.
//   - Logout: clear storage and memory; always succeeds.
//   - UpdateProfile: merge a partial edit into the signed-in profile.
//   - RefreshUser: merge a server copy of the signed-in profile.
//
// Login, Register and UpdateProfile reject a call made while another of them
// is still running. IsAuthenticated is derived from the in-memory profile.
type AuthService interface {
	Init(ctx context.Context)
	CheckAuthStatus(ctx context.Context) *models.UserProfile

	Login(ctx context.Context, creds models.Credentials) models.Result
	Register(ctx context.Context, data models.RegisterData) models.Result
	Logout(ctx context.Context) models.Result
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) models.Result
	RefreshUser(ctx context.Context, u *client.UserPayload) (*models.UserProfile, error)

	State() models.State
	User() *models.UserProfile
	IsAuthenticated() bool
	IsLoading() bool
	RequireAuth() error

	// Subscribe registers fn for state changes and returns its cancel func.
	Subscribe(fn func(models.State)) func()

	AccessTokenInfo(ctx context.Context) (tokens.Info, error)
}

// SessionStore is the persistence the auth service needs.
type SessionStore interface {
	Persist(ctx context.Context, sess models.Session) error
	SaveUser(ctx context.Context, u *models.UserProfile) error
	Read(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
	AccessToken(ctx context.Context) (string, error)
}

type authService struct {
	client client.Client
	store  SessionStore
	log    logging.Logger
	now    func() time.Time

	busy atomic.Bool

	mu      sync.RWMutex
	user    *models.UserProfile
	loading bool

	subMu  sync.Mutex
	subs   map[int]func(models.State)
	nextID int
}

// NewAuthService returns an AuthService in the loading state. Call Init to
// restore a stored session.
func NewAuthService(c client.Client, store SessionStore, log logging.Logger) AuthService {
	return &authService{
		client:  c,
		store:   store,
		log:     log.With("component", "auth"),
		now:     time.Now,
		loading: true,
		subs:    make(map[int]func(models.State)),
	}
}

func (a *authService) Init(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(ctx, "session restore panicked", "panic", r)
			a.setUser(nil, false)
		}
	}()

	u := a.CheckAuthStatus(ctx)
	if u != nil {
		a.log.Info(ctx, "session restored", "user_id", u.ID)
	}
	a.setUser(u, false)
}

// CheckAuthStatus reads the session store. A profile is returned only when it
// satisfies the authentication predicate and an access token is stored.
func (a *authService) CheckAuthStatus(ctx context.Context) *models.UserProfile {
	sess, err := a.store.Read(ctx)
	if err != nil {
		a.log.Warn(ctx, "reading stored session failed", "error", err)
		return nil
	}
	if sess == nil || !sess.User.Authenticated() || sess.AccessToken == "" {
		return nil
	}
	if tokens.IsExpired(sess.AccessToken, a.now()) {
		a.log.Debug(ctx, "stored access token is expired, relying on refresh", "user_id", sess.User.ID)
	}
	sess.User.IsNewUser = false
	return sess.User
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) (res models.Result) {
	if v := validate.Login(creds); !v.Valid {
		return models.Failed(v.Error)
	}
	release, ok := a.acquire()
	if !ok {
		return models.Failed(MsgBusy)
	}
	defer release()
	defer a.recoverResult(ctx, "login", &res)

	phone := validate.StripSpaces(creds.Phone)
	resp, err := a.client.Login(ctx, client.LoginRequest{Mobile: phone, Password: creds.Password})
	if err != nil {
		a.log.Warn(ctx, "login request failed", "error", err)
		return models.Failed(MsgNetwork)
	}
	if !resp.OK() {
		a.log.Info(ctx, "login rejected", "status", resp.StatusCode, "phone_suffix", lastDigits(phone, 4))
		return models.Failed(loginError(resp))
	}

	return a.establish(ctx, resp, &models.UserProfile{Phone: phone}, MsgLoginFailed, false)
}

func loginError(resp *client.Response) string {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return MsgInvalidCredentials
	case http.StatusBadRequest:
		return orDefault(resp.ErrorMessage(false), MsgLoginBadRequest)
	case http.StatusForbidden:
		return orDefault(resp.ErrorMessage(false), MsgAccountBlocked)
	default:
		return MsgLoginFailed
	}
}

func (a *authService) Register(ctx context.Context, data models.RegisterData) (res models.Result) {
	if v := validate.Register(data); !v.Valid {
		return models.Failed(v.Error)
	}
	release, ok := a.acquire()
	if !ok {
		return models.Failed(MsgBusy)
	}
	defer release()
	defer a.recoverResult(ctx, "register", &res)

	req := client.RegisterRequest{
		Username:     strings.TrimSpace(data.Name),
		Mobile:       validate.StripSpaces(data.Phone),
		Email:        strings.TrimSpace(data.Email),
		Password:     data.Password,
		ReferralCode: strings.TrimSpace(data.ReferralCode),
	}
	resp, err := a.client.Register(ctx, req)
	if err != nil {
		a.log.Warn(ctx, "register request failed", "error", err)
		return models.Failed(MsgNetwork)
	}
	if !resp.OK() {
		a.log.Info(ctx, "registration rejected", "status", resp.StatusCode, "phone_suffix", lastDigits(req.Mobile, 4))
		return models.Failed(registerError(resp))
	}

	base := &models.UserProfile{Name: req.Username, Phone: req.Mobile, Email: req.Email}
	return a.establish(ctx, resp, base, orDefault(resp.ErrorMessage(true), MsgRegistrationFailed), true)
}

func registerError(resp *client.Response) string {
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return orDefault(resp.ErrorMessage(true), MsgRegisterBadRequest)
	case http.StatusConflict:
		return MsgPhoneTaken
	default:
		return MsgRegisterFailed
	}
}

// establish turns a successful auth response into the signed-in state. A
// response without an access token or user id fails with failMsg. Storage
// failures are logged; the in-memory session stays.
func (a *authService) establish(ctx context.Context, resp *client.Response, base *models.UserProfile, failMsg string, isNew bool) models.Result {
	var payload client.AuthPayload
	if err := resp.Decode(&payload); err != nil {
		a.log.Warn(ctx, "decoding auth response failed", "error", err)
		return models.Failed(MsgNetwork)
	}
	if payload.Access == "" {
		a.log.Warn(ctx, "auth response has no access token", "request_id", resp.RequestID)
		return models.Failed(failMsg)
	}

	user, err := profileFromPayload(base, payload.User, a.now(), true)
	if err != nil {
		a.log.Warn(ctx, "auth response has unusable user", "error", err, "request_id", resp.RequestID)
		return models.Failed(failMsg)
	}

	sess := models.Session{User: user, AccessToken: payload.Access, RefreshToken: payload.Refresh}
	if err := a.store.Persist(ctx, sess); err != nil {
		a.log.Error(ctx, "persisting session failed", "error", err, "user_id", user.ID)
	}

	user.IsNewUser = isNew
	a.setUser(user, false)
	a.log.Info(ctx, "signed in", "user_id", user.ID, "new_user", isNew)

	return models.Succeeded(user.Clone())
}

func (a *authService) Logout(ctx context.Context) (res models.Result) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(ctx, "logout panicked", "panic", r)
		}
		a.setUser(nil, false)
		res = models.Result{Success: true}
	}()

	if err := a.store.Clear(ctx); err != nil {
		a.log.Error(ctx, "clearing session storage failed", "error", err)
	}
	a.log.Info(ctx, "signed out")
	return res
}

// UpdateProfile merges upd into the signed-in profile and persists it. The
// in-memory profile is replaced only once the store accepted it.
func (a *authService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (res models.Result) {
	if !a.IsAuthenticated() {
		return models.Failed(MsgNotAuthenticated)
	}
	if v := validateUpdate(upd); !v.Valid {
		return models.Failed(v.Error)
	}
	release, ok := a.acquire()
	if !ok {
		return models.Failed(MsgBusy)
	}
	defer release()
	defer a.recoverResult(ctx, "update_profile", &res)

	cur := a.User()
	if cur == nil {
		return models.Failed(MsgNotAuthenticated)
	}
	next := cur.Apply(upd)

	if err := a.store.SaveUser(ctx, next); err != nil {
		a.log.Error(ctx, "saving profile failed", "error", err, "user_id", next.ID)
		return models.Failed(MsgProfileUpdateFailed)
	}

	a.setUser(next, false)
	return models.Succeeded(next.Clone())
}

func validateUpdate(upd models.ProfileUpdate) validate.Validation {
	if upd.Name != nil {
		if v := validate.Name(*upd.Name); !v.Valid {
			return v
		}
	}
	if upd.Phone != nil {
		if v := validate.Phone(*upd.Phone); !v.Valid {
			return v
		}
	}
	if upd.Email != nil {
		if v := validate.Email(*upd.Email); !v.Valid {
			return v
		}
	}
	return validate.Validation{Valid: true}
}

// RefreshUser merges a server copy of the signed-in profile. The copy must
// belong to the same user.
func (a *authService) RefreshUser(ctx context.Context, u *client.UserPayload) (*models.UserProfile, error) {
	cur := a.User()
	if !cur.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	next, err := profileFromPayload(cur, u, a.now(), false)
	if err != nil {
		return nil, err
	}
	if err := a.store.SaveUser(ctx, next); err != nil {
		a.log.Warn(ctx, "saving refreshed profile failed", "error", err, "user_id", next.ID)
	}

	a.setUser(next, false)
	return next.Clone(), nil
}

func (a *authService) State() models.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stateLocked()
}

func (a *authService) stateLocked() models.State {
	return models.State{
		User:            a.user.Clone(),
		IsAuthenticated: a.user.Authenticated(),
		IsLoading:       a.loading,
	}
}

func (a *authService) User() *models.UserProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user.Clone()
}

func (a *authService) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user.Authenticated()
}

func (a *authService) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// RequireAuth returns ErrNotAuthenticated when nobody is signed in.
func (a *authService) RequireAuth() error {
	if !a.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (a *authService) Subscribe(fn func(models.State)) func() {
	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, id)
			a.subMu.Unlock()
		})
	}
}

// AccessTokenInfo reports the claims of the stored access token.
func (a *authService) AccessTokenInfo(ctx context.Context) (tokens.Info, error) {
	tok, err := a.store.AccessToken(ctx)
	if err != nil {
		return tokens.Info{}, err
	}
	return tokens.Inspect(tok)
}

func (a *authService) setUser(u *models.UserProfile, loading bool) {
	a.mu.Lock()
	a.user = u.Clone()
	a.loading = loading
	st := a.stateLocked()
	a.mu.Unlock()

	a.notify(st)
}

func (a *authService) setLoading(loading bool) {
	a.mu.Lock()
	a.loading = loading
	st := a.stateLocked()
	a.mu.Unlock()

	a.notify(st)
}

func (a *authService) notify(st models.State) {
	a.subMu.Lock()
	fns := make([]func(models.State), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// acquire takes the in-flight slot and raises the loading flag.
func (a *authService) acquire() (func(), bool) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	a.setLoading(true)
	return func() {
		if a.IsLoading() {
			a.setLoading(false)
		}
		a.busy.Store(false)
	}, true
}

func (a *authService) recoverResult(ctx context.Context, op string, res *models.Result) {
	if r := recover(); r != nil {
		a.log.Error(ctx, "operation panicked", "op", op, "panic", r)
		*res = models.Failed(MsgNetwork)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
