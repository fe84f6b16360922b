package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/editor"
)

func newNoteEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "edit [ref]",
		Short:             "Edit a note in $VISUAL/$EDITOR (default: the active one)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveExactRef(app.Notes, firstArg(args))
			if err != nil {
				return err
			}
			path, err := editor.PathForID(n.ID)
			if err != nil {
				return err
			}
			out, changed, err := editor.OpenAt(cmd.Context(), path, []byte(editor.Compose(n.Title, n.Content)), editor.Streams{
				In:  cmd.InOrStdin(),
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if !changed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; note unchanged.")
				return nil
			}
			title, body := editor.Parse(string(out))
			if strings.TrimSpace(body) == "" && app.Cfg.DeleteEmpty && app.Notes.Len() > 1 {
				if _, err := app.Notes.Close(n.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Note closed: empty content.")
				return nil
			}
			if title != "" && title != n.Title {
				if err := app.Notes.Rename(n.ID, title); err != nil {
					return err
				}
			}
			if err := app.Notes.EditContent(n.ID, body); err != nil {
				return err
			}
			if err := app.Notes.SwitchActive(n.ID); err != nil {
				return err
			}
			return app.Notes.ManualSave()
		},
	}
}
