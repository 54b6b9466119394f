package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/common"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type call struct {
	Method   string
	Endpoint string
	Body     any
}

// fakeClient implements client.Client; respond decides every reply.
type fakeClient struct {
	mu      sync.Mutex
	calls   []call
	respond func(c call) (*client.Response, error)
}

func (f *fakeClient) do(c call) (*client.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return nil, fmt.Errorf("%w: no responder", client.ErrNetwork)
	}
	return respond(c)
}

func (f *fakeClient) Get(_ context.Context, endpoint string) (*client.Response, error) {
	return f.do(call{Method: http.MethodGet, Endpoint: endpoint})
}

func (f *fakeClient) Post(_ context.Context, endpoint string, body any) (*client.Response, error) {
	return f.do(call{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}

func (f *fakeClient) Put(_ context.Context, endpoint string, body any) (*client.Response, error) {
	return f.do(call{Method: http.MethodPut, Endpoint: endpoint, Body: body})
}

func (f *fakeClient) Delete(_ context.Context, endpoint string) (*client.Response, error) {
	return f.do(call{Method: http.MethodDelete, Endpoint: endpoint})
}

func (f *fakeClient) Login(_ context.Context, req client.LoginRequest) (*client.Response, error) {
	return f.do(call{Method: http.MethodPost, Endpoint: common.LoginPath, Body: req})
}

func (f *fakeClient) Register(_ context.Context, req client.RegisterRequest) (*client.Response, error) {
	return f.do(call{Method: http.MethodPost, Endpoint: common.RegisterPath, Body: req})
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func reply(status int, body string) func(call) (*client.Response, error) {
	return func(call) (*client.Response, error) {
		return jsonResp(status, body), nil
	}
}

func jsonResp(status int, body string) *client.Response {
	return &client.Response{StatusCode: status, Body: json.RawMessage(body)}
}

// fakeStore implements SessionStore in memory and counts every access.
type fakeStore struct {
	mu      sync.Mutex
	sess    *models.Session
	touches int

	persistErr error
	saveErr    error
	readErr    error
	clearErr   error
	clearPanic bool
}

func (s *fakeStore) touch() {
	s.touches++
}

func (s *fakeStore) Persist(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.persistErr != nil {
		return s.persistErr
	}
	cp := sess
	cp.User = sess.User.Clone()
	s.sess = &cp
	return nil
}

func (s *fakeStore) SaveUser(_ context.Context, u *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.sess == nil {
		s.sess = &models.Session{}
	}
	s.sess.User = u.Clone()
	return nil
}

func (s *fakeStore) Read(context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.sess == nil {
		return nil, nil
	}
	cp := *s.sess
	cp.User = s.sess.User.Clone()
	return &cp, nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.clearPanic {
		panic("storage exploded")
	}
	if s.clearErr != nil {
		return s.clearErr
	}
	s.sess = nil
	return nil
}

func (s *fakeStore) AccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.sess == nil {
		return "", nil
	}
	return s.sess.AccessToken, nil
}

func (s *fakeStore) Touches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touches
}

func (s *fakeStore) Session() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func newAuth(t *testing.T, fc *fakeClient, store SessionStore) *authService {
	t.Helper()
	svc := NewAuthService(fc, store, logging.Discard()).(*authService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

const loginOK = `{"user":{"id":"1","mobile":"9876543210"},"access":"a","refresh":"r"}`

// signIn logs in as user 1 and resets the recorded calls.
func signIn(t *testing.T, svc *authService, fc *fakeClient) *models.UserProfile {
	t.Helper()
	fc.respond = reply(http.StatusOK, loginOK)
	res := svc.Login(context.Background(), models.Credentials{Phone: "9876543210", Password: "abcd"})
	require.True(t, res.Success, res.Error)

	fc.mu.Lock()
	fc.calls = nil
	fc.respond = nil
	fc.mu.Unlock()
	return res.User
}

func strPtr(s string) *string { return &s }
