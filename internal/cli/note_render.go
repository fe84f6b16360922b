package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/render"
)

func newNoteRenderCmd() *cobra.Command {
	var standalone bool
	cmd := &cobra.Command{
		Use:               "render [ref]",
		Short:             "Print a note as HTML (default: the active one)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRefs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := resolveRef(app.Notes, firstArg(args))
			if err != nil {
				return err
			}
			out := render.HTML(n.Content)
			if standalone {
				out = render.Document(n.Title, n.Content)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&standalone, "standalone", false, "wrap the fragment in a complete HTML page")
	return cmd
}

func newNoteExportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every note to <dir>/<title>.md",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			used := make(map[string]bool)
			list := app.Notes.Notes()
			for _, n := range list {
				name := exportName(n.Title, used)
				path := filepath.Join(dir, name)
				if err := os.WriteFile(path, []byte(n.Content), 0o644); err != nil {
					return fmt.Errorf("export %s: %w", n.ID, err)
				}
				app.Log.Debug("exported note", "id", n.ID, "path", path)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", len(list), dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "target directory")
	return cmd
}

// exportName turns a title into a unique file name.
func exportName(title string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	base = strings.Trim(base, ". ")
	if base == "" {
		base = "note"
	}
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	used[strings.ToLower(name)] = true
	return name + ".md"
}
