package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/present"
)

func newNoteShowCmd() *cobra.Command {
	var outputMode string
	cmd := &cobra.Command{
		Use:               "show [ref]",
		Short:             "Display a note (default: the active one)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveRef(app.Notes, firstArg(args))
			if err != nil {
				return err
			}
			mode := present.ModePlain
			if outputMode == "" {
				if isTerminal(cmd.OutOrStdout()) {
					mode = present.ModePretty
				}
			} else {
				var ok bool
				if mode, ok = present.ParseMode(strings.ToLower(outputMode)); !ok {
					return fmt.Errorf("invalid --output: %s", outputMode)
				}
			}
			opts := present.Options{
				Mode:       mode,
				JSONIndent: true,
				Dark:       app.Theme.Dark(),
				WordWrap:   app.Cfg.WordWrap,
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderNote(w, n, opts)
			})
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "", "output mode: plain|pretty|json (default pretty on a terminal)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "pretty", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
