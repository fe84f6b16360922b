package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/present/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the tabbed editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}
}

func runTUI(cmd *cobra.Command) error {
	app := getApp(cmd)
	return tui.Run(cmd.Context(), tui.Options{
		Notes:    app.Notes,
		Theme:    app.Theme,
		Keys:     app.Cfg.Keys,
		Renderer: app.Cfg.Renderer,
		WordWrap: app.Cfg.WordWrap,
		Log:      app.Log,
		Notices:  app.DrainNotices(),
	})
}
