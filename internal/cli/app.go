package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/idilsaglam/tadasync/internal/config"
	"github.com/idilsaglam/tadasync/internal/remote"
	"github.com/idilsaglam/tadasync/internal/session"
	"github.com/idilsaglam/tadasync/internal/todo"
	"github.com/idilsaglam/tadasync/internal/ui"
)

// app carries what every subcommand needs once the root has set up.
type app struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	opts Options
	cfg  config.Config

	logger  *slog.Logger
	logFile *os.File

	store *session.Store
	shell *session.Shell

	remoteConfigured bool
}

func (a *app) setup(tui bool) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	a.opts.apply(&cfg)
	a.cfg = cfg

	ui.SetTheme(cfg.UI.Theme)

	if err := a.setupLogger(tui); err != nil {
		return err
	}

	store, err := session.OpenStore(cfg.DataDir)
	if err != nil {
		return err
	}
	a.store = store

	provider := session.NewProvider(session.ProviderConfig{
		AuthURL:      cfg.Auth.AuthURL,
		TokenURL:     cfg.Auth.TokenURL,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		Scopes:       cfg.Auth.Scopes,
	})
	a.shell = session.NewShell(store, provider, a.logger)
	return nil
}

func (a *app) setupLogger(tui bool) error {
	w := a.errOut
	path := a.cfg.Log.File
	// The TUI owns the terminal; its logs go to a file.
	if path == "" && tui {
		path = filepath.Join(a.cfg.DataDir, "tada.log")
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	a.logger = newLogger(w, a.cfg.Log.Level, a.cfg.Log.Format)
	slog.SetDefault(a.logger)
	return nil
}

// withController gates fn behind a session, then performs the one-time
// backend setup and builds the controller.
func (a *app) withController(ctx context.Context, fn func(*todo.Controller, *session.Session) error) error {
	if err := a.cfg.Validate(); err != nil {
		return usageError{err}
	}

	return a.shell.Run(ctx, func(sess *session.Session) error {
		store, err := remote.Configure(ctx, remote.Options{
			Endpoint:    a.cfg.Backend.Endpoint,
			APIKey:      a.cfg.Backend.APIKey,
			TokenSource: sess.TokenSource,
			Logger:      a.logger,
		})
		if err != nil {
			return err
		}
		a.remoteConfigured = true

		ctrl := todo.New(store,
			todo.WithLogger(a.logger),
			todo.WithPrompter(func(err *todo.ValidationError) {
				ui.Fail(a.errOut, err.Error())
			}),
		)
		return fn(ctrl, sess)
	})
}

func (a *app) close() {
	if a.remoteConfigured {
		remote.Reset()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("close session store", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// usageError maps to exit code 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	var ve *todo.ValidationError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue), errors.As(err, &ve), errors.Is(err, session.ErrNotSignedIn):
		return 2
	}
	return 1
}
