package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/config"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gameclient/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/gameclient/internal/client/services"
	"github.com/dmitrijs2005/gameclient/internal/client/session"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	auth    services.AuthService
	account services.AccountService
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	lastAuth bool
}

// NewApp opens the session database, connects the Redis mirror when one is
// configured and builds the services. A mirror that cannot be reached is
// logged and skipped.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("init session database: %w", err)
	}

	a := &App{
		config:  c,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{db.Close},
	}

	var secondary session.Backend
	if c.RedisURL != "" {
		rdb, err := mirror.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			log.Warn(ctx, "redis mirror unavailable, using local storage only", "error", err)
		} else {
			repo := mirror.NewRedisRepository(rdb, "")
			secondary = repo
			a.closers = append(a.closers, repo.Close)
		}
	}

	store := session.NewStore(metadata.NewSQLiteRepository(db), secondary, log)
	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, store, log)

	a.auth = services.NewAuthService(api, store, log)
	a.account = services.NewAccountService(api, a.auth, log)
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error(ctx, "closing resources failed", "error", err)
		}
	}()

	unsubscribe := a.auth.Subscribe(func(st models.State) { a.onStateChange(ctx, st) })
	defer unsubscribe()

	a.auth.Init(ctx)
	a.Root(ctx)
}

// Close releases the database and the mirror connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onStateChange(ctx context.Context, st models.State) {
	if st.IsAuthenticated == a.lastAuth {
		return
	}
	a.lastAuth = st.IsAuthenticated
	if st.IsAuthenticated {
		a.log.Info(ctx, "authenticated", "user_id", st.User.ID)
	} else {
		a.log.Info(ctx, "unauthenticated")
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}
