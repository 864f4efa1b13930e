package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"backoffice/console/internal/config"
	domain "backoffice/console/internal/domain/session"
	"backoffice/console/internal/infrastructure/authclient"
	boltkv "backoffice/console/internal/infrastructure/kv/bbolt"
	"backoffice/console/internal/infrastructure/kv/memory"
	sqlitekv "backoffice/console/internal/infrastructure/kv/sqlite"
	"backoffice/console/internal/logging"
	"backoffice/console/internal/usecase/session"
)

// app is the wiring shared by every subcommand.
type app struct {
	logger  *slog.Logger
	client  *authclient.Client
	session *session.Controller
	closeKV func() error
}

func openStore(c config.Console) (domain.KeyValueStore, func() error, error) {
	switch c.StoreDriver {
	case config.StoreMemory:
		return memory.New(), func() error { return nil }, nil
	case config.StoreSQLite:
		s, err := sqlitekv.Open(c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return s, s.Close, nil
	default:
		s, err := boltkv.Open(c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return s, s.Close, nil
	}
}

// openLog returns the log destination: LOG_FILE when set, otherwise fallback.
func openLog(c config.Console, fallback io.Writer) (io.Writer, func() error, error) {
	if c.LogFile == "" {
		return fallback, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func newApp(c config.Console, logOut io.Writer, hooks session.Hooks) (*app, error) {
	out, closeLog, err := openLog(c, logOut)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Service: "console",
		Level:   c.LogLevel,
		Format:  c.LogFormat,
	}, out)

	kv, closeKV, err := openStore(c)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	client := authclient.New(c.APIBaseURL,
		authclient.WithHTTPClient(&http.Client{Timeout: c.HTTPClientTimeout}),
		authclient.WithDefaultTTL(c.DefaultTokenTTL),
		authclient.WithLogger(logger),
	)
	ctrl := session.NewController(kv, client, session.Options{
		WarningWindow: c.WarningWindow,
		ActivityQuiet: c.ActivityQuiet,
		Logger:        logger,
		Hooks:         hooks,
	})
	// any 401 on any request ends the local session
	client.SetUnauthorizedHandler(ctrl.ForceLogout)

	return &app{
		logger:  logger,
		client:  client,
		session: ctrl,
		closeKV: func() error {
			err := closeKV()
			if cerr := closeLog(); err == nil {
				err = cerr
			}
			return err
		},
	}, nil
}

// Close stops the session timers and releases the store. The persisted
// credential is left in place.
func (a *app) Close() {
	a.session.Close()
	if err := a.closeKV(); err != nil {
		a.logger.Warn("closing session store", "error", err)
	}
}
