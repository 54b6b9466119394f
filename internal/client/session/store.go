// Package session persists the signed-in user's profile and tokens.
//
// A Store writes to a primary backend (the local SQLite database) and, when
// configured, mirrors every write to a secondary backend (Redis). Mirror write
// failures are logged and do not fail the call. Reads prefer the primary and
// fall back to the secondary.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/common"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

// Backend is a key/value store holding session keys.
// Get returns (nil, nil) for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetAll(ctx context.Context, values map[string][]byte) error
	DeleteKeys(ctx context.Context, keys ...string) error
}

type Store struct {
	primary   Backend
	secondary Backend
	log       logging.Logger
}

// NewStore builds a Store. secondary may be nil.
func NewStore(primary, secondary Backend, log logging.Logger) *Store {
	return &Store{primary: primary, secondary: secondary, log: log.With("component", "session_store")}
}

func (s *Store) backends() []Backend {
	if s.secondary == nil {
		return []Backend{s.primary}
	}
	return []Backend{s.primary, s.secondary}
}

// eachBackend runs fn on every backend and joins the failures.
func (s *Store) eachBackend(fn func(b Backend) error) error {
	var errs []error
	for _, b := range s.backends() {
		if err := fn(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// mirror runs fn on the secondary. A failure is logged only.
func (s *Store) mirror(ctx context.Context, op string, fn func(b Backend) error) {
	if s.secondary == nil {
		return
	}
	if err := fn(s.secondary); err != nil {
		s.log.Warn(ctx, "session mirror write failed", "op", op, "error", err)
	}
}

// Persist writes the profile and both tokens to every backend. Only a
// primary failure is returned; the secondary is written either way.
func (s *Store) Persist(ctx context.Context, sess models.Session) error {
	if sess.User == nil {
		return fmt.Errorf("persist session: no user")
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	values := map[string][]byte{
		common.UserDataKey:     data,
		common.AccessTokenKey:  []byte(sess.AccessToken),
		common.RefreshTokenKey: []byte(sess.RefreshToken),
	}
	write := func(b Backend) error { return b.SetAll(ctx, values) }

	err = write(s.primary)
	s.mirror(ctx, "persist", write)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SaveUser rewrites only the stored profile. The secondary is written only
// after the primary accepted it.
func (s *Store) SaveUser(ctx context.Context, u *models.UserProfile) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	write := func(b Backend) error { return b.Set(ctx, common.UserDataKey, data) }

	if err := write(s.primary); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.mirror(ctx, "save_user", write)
	return nil
}

// SetAccessToken replaces the stored access token.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	write := func(b Backend) error { return b.Set(ctx, common.AccessTokenKey, []byte(token)) }

	err := write(s.primary)
	s.mirror(ctx, "set_access_token", write)
	if err != nil {
		return fmt.Errorf("set access token: %w", err)
	}
	return nil
}

// Clear removes every session key, including legacy token keys, from every
// backend. Each backend is cleared with a single operation. Failures from
// any backend are returned, since a leftover copy would be restored by Read.
func (s *Store) Clear(ctx context.Context) error {
	return s.eachBackend(func(b Backend) error {
		return b.DeleteKeys(ctx, common.SessionKeys...)
	})
}

// Read returns the stored session, or (nil, nil) when there is none. The
// primary is used when it holds a profile; otherwise the secondary.
func (s *Store) Read(ctx context.Context) (*models.Session, error) {
	var firstErr error
	for _, b := range s.backends() {
		sess, err := readFrom(ctx, b)
		if err != nil {
			s.log.Warn(ctx, "reading session failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if sess != nil {
			return sess, nil
		}
	}
	return nil, firstErr
}

func readFrom(ctx context.Context, b Backend) (*models.Session, error) {
	data, err := b.Get(ctx, common.UserDataKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var u models.UserProfile
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode %s: %w", common.UserDataKey, err)
	}

	access, err := accessToken(ctx, b)
	if err != nil {
		return nil, err
	}
	refresh, err := b.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return nil, err
	}

	return &models.Session{User: &u, AccessToken: access, RefreshToken: string(refresh)}, nil
}

// accessToken reads the current key, then the legacy ones.
func accessToken(ctx context.Context, b Backend) (string, error) {
	for _, key := range []string{common.AccessTokenKey, common.LegacyAuthTokenKey, common.LegacyAuthTokenCamelKey} {
		v, err := b.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if len(v) > 0 {
			return string(v), nil
		}
	}
	return "", nil
}

// AccessToken returns the bearer token for outgoing requests.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.firstValue(ctx, accessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.firstValue(ctx, func(ctx context.Context, b Backend) (string, error) {
		v, err := b.Get(ctx, common.RefreshTokenKey)
		return string(v), err
	})
}

func (s *Store) firstValue(ctx context.Context, get func(context.Context, Backend) (string, error)) (string, error) {
	var firstErr error
	for _, b := range s.backends() {
		v, err := get(ctx, b)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if v != "" {
			return v, nil
		}
	}
	return "", firstErr
}
