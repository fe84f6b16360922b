package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newNoteRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <ref> <title...>",
		Short:             "Rename a note",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveExactRef(app.Notes, args[0])
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Title is empty; name unchanged.")
				return nil
			}
			if err := app.Notes.Rename(n.ID, title); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, title)
			return nil
		},
	}
}

func newNoteCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "close <ref>",
		Short:             "Close (delete) a note",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveExactRef(app.Notes, args[0])
			if err != nil {
				return err
			}
			closed, err := app.Notes.Close(n.ID)
			if err != nil || !closed {
				// a refused close has already printed its notice
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Closed %s\t%s\n", n.ID, n.Title)
			return nil
		},
	}
}

func newNoteMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "move <ref> <position>",
		Short:             "Move a note to a tab position (0-based)",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveExactRef(app.Notes, args[0])
			if err != nil {
				return err
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}
			if err := app.Notes.Reorder(app.Notes.Index(n.ID), to); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", to, n.ID, n.Title)
			return nil
		},
	}
}

func newNoteSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "switch <ref>",
		Short:             "Make a note the active one",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveRef(app.Notes, args[0])
			if err != nil {
				return err
			}
			if err := app.Notes.SwitchActive(n.ID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
			return nil
		},
	}
}
