package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/idilsaglam/tadasync/internal/session"
	"github.com/idilsaglam/tadasync/internal/ui"
	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <login|logout|status|whoami>",
		Short: "Sign in to the backend",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return silentUsage
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup(false)
		},
	}

	cmd.AddCommand(newLoginCmd(a), newLogoutCmd(a), newStatusCmd(a), newWhoAmICmd(a))
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		pasteToken bool
		username   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username and password, or paste a token",
		Long: `Sign in with the identity provider configured in [auth].

Without a token URL, or with --token, the command asks for a token instead
and stores it as is. TADA_TOKEN overrides whatever is stored.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				sess *session.Session
				err  error
			)
			if pasteToken || a.cfg.Auth.TokenURL == "" {
				token, perr := session.PromptLine(a.in, "Paste your token: ")
				if perr != nil {
					return fmt.Errorf("read token: %w", perr)
				}
				sess, err = a.shell.SignInToken(ctx, token, nil)
			} else {
				if username == "" {
					if username, err = session.PromptLine(a.in, "Username: "); err != nil {
						return fmt.Errorf("read username: %w", err)
					}
				}
				password, perr := session.PromptForPassword(a.in, "Password: ")
				if perr != nil {
					return fmt.Errorf("read password: %w", perr)
				}
				sess, err = a.shell.SignIn(ctx, username, password)
			}
			if err != nil {
				return err
			}

			msg := "logged in"
			if sess.User.Username != "" {
				msg += " as " + sess.User.Username
			}
			ui.OK(a.out, msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pasteToken, "token", false, "paste an access token instead of signing in")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and delete stored credentials",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			err := a.shell.SignOut()
			if errors.Is(err, session.ErrEnvSession) {
				ui.OK(a.out, "token is provided by TADA_TOKEN env var (nothing to delete)")
				return nil
			}
			if err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(a.out, "logged out")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the session comes from and when it expires",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.shell.Current(cmd.Context())
			if errors.Is(err, session.ErrNotSignedIn) {
				fmt.Fprintln(a.out, ui.Current().Muted.Render("not logged in"))
				fmt.Fprintln(a.out, "Run: todo auth login")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "user: %s\n", sess.User.Username)
			fmt.Fprintf(a.out, "source: %s\n", sess.Source)
			if sess.User.ExpiresAt != nil {
				fmt.Fprintf(a.out, "expires: %s\n", sess.User.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(a.out, "expires: (unknown)")
			}
			fmt.Fprintf(a.out, "endpoint: %s\n", a.cfg.Backend.Endpoint)
			fmt.Fprintln(a.out, "env override: "+session.EnvToken)
			return nil
		},
	}
}

// whoami decodes the JWT payload locally (unverified); opaque tokens print basic info.
func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the identity claims of the current token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.shell.Current(cmd.Context())
			if err != nil {
				return err
			}
			tok, err := sess.TokenSource.Token()
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}

			if claims := session.Claims(tok.AccessToken); claims != nil {
				b, err := json.MarshalIndent(claims, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "JWT payload:")
				fmt.Fprintln(a.out, string(b))
				return nil
			}
			fmt.Fprintln(a.out, "Opaque token (cannot introspect locally).")
			fmt.Fprintln(a.out, "user:", sess.User.Username)
			fmt.Fprintln(a.out, "source:", sess.Source)
			return nil
		},
	}
}
