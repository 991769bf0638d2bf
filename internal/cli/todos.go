package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/idilsaglam/tadasync/internal/model"
	"github.com/idilsaglam/tadasync/internal/session"
	"github.com/idilsaglam/tadasync/internal/todo"
	"github.com/idilsaglam/tadasync/internal/tui"
	"github.com/idilsaglam/tadasync/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newListCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items (interactive TUI)",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			interactive := !plain && isTerminal(a.out)
			if err := a.setup(interactive); err != nil {
				return err
			}

			return a.withController(cmd.Context(), func(ctrl *todo.Controller, sess *session.Session) error {
				if !interactive {
					_ = ctrl.Refresh(cmd.Context())
					printList(a, sess, ctrl.Items())
					return nil
				}

				deleted := false
				a.shell.OnSignOut(func() { deleted = true })

				final, err := tui.Run(cmd.Context(), ctrl, sess)
				if err != nil {
					return fmt.Errorf("tui: %w", err)
				}
				switch {
				case final.SignedOut() && deleted:
					ui.OK(a.out, "signed out")
				case final.SignedOut():
					return errors.New("sign out failed; credentials are still stored")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the list instead of starting the TUI")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name...> -d <description>",
		Short: "Add a new item (name can be multiple words)",
		Example: `  todo add "Buy milk" -d "2%"
  todo add Call the plumber --description "about the sink"`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}

			name := strings.Join(args, " ")
			return a.withController(cmd.Context(), func(ctrl *todo.Controller, sess *session.Session) error {
				if err := ctrl.SubmitCreate(cmd.Context(), name, description); err != nil {
					return silenceValidation(err)
				}
				ui.OK(a.out, "added")
				printList(a, sess, ctrl.Items())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "item description (required)")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "rm <index> | rm --id <id>",
		Short: "Remove item at 1-based index (as shown by ls) or by id",
		Args: usageArgs(func(cmd *cobra.Command, args []string) error {
			if id != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			userIndex := 0
			if id == "" {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return usageError{fmt.Errorf("rm: not a number: %s", args[0])}
				}
				userIndex = n
			}

			if err := a.setup(false); err != nil {
				return err
			}

			return a.withController(cmd.Context(), func(ctrl *todo.Controller, sess *session.Session) error {
				if err := ctrl.Refresh(cmd.Context()); err != nil {
					return err
				}

				target, err := pickItem(ctrl.Items(), userIndex, id)
				if err != nil {
					return err
				}
				if err := ctrl.SubmitDelete(cmd.Context(), target); err != nil {
					return silenceValidation(err)
				}
				ui.OK(a.out, "removed "+target.Name)
				printList(a, sess, ctrl.Items())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "remove the item with this id")
	return cmd
}

func pickItem(items []model.Item, userIndex int, id string) (model.Item, error) {
	if id != "" {
		for _, it := range items {
			if it.ID == id {
				return it, nil
			}
		}
		return model.Item{}, usageError{fmt.Errorf("no item with id %s\nHint: run `todo ls` to see the list", id)}
	}
	if userIndex < 1 || userIndex > len(items) {
		return model.Item{}, usageError{fmt.Errorf("index out of range: have %d, got %d\nHint: run `todo ls` to see valid indexes", len(items), userIndex)}
	}
	return items[userIndex-1], nil
}

func printList(a *app, sess *session.Session, items []model.Item) {
	lines := []string{ui.Header(sess.User.Username, len(items)), ""}
	lines = append(lines, ui.ItemLines(items)...)
	lines = append(lines, "", ui.Current().Muted.Render("Tip: add with `todo add \"Buy milk\" -d \"2%\"`"))
	ui.Panel(a.out, lines)
}

// silenceValidation keeps the exit code of a validation error; the prompter
// has already told the user.
func silenceValidation(err error) error {
	var ve *todo.ValidationError
	if errors.As(err, &ve) {
		return silentUsage
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
