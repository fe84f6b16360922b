package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNoteNewCmd() *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "new [title...]",
		Short: "Create a note and make it active",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := app.Notes.Create()
			if err != nil {
				return err
			}
			if title := strings.TrimSpace(strings.Join(args, " ")); title != "" {
				if err := app.Notes.Rename(n.ID, title); err != nil {
					return err
				}
			}
			if content != "" {
				if err := app.Notes.EditContent(n.ID, content); err != nil {
					return err
				}
				if err := app.Notes.Flush(); err != nil {
					return err
				}
			}
			n, _ = app.Notes.Get(n.ID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "initial markdown content")
	return cmd
}
