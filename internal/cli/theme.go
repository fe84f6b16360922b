package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/theme"
)

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{theme.Dark, theme.Light, "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			flag := getApp(cmd).Theme
			switch firstArg(args) {
			case "":
				src := "system"
				if flag.Saved() {
					src = "saved"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", flag.Name(), src)
				return nil
			case "toggle":
				if err := flag.Toggle(); err != nil {
					return err
				}
			default:
				dark, _ := theme.Parse(args[0])
				if err := flag.Set(dark); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), flag.Name())
			return nil
		},
	}
}
