package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/tabnote/internal/notes"
	"github.com/mithrel/tabnote/internal/util"
	"github.com/mithrel/tabnote/pkg/models"
)

// newNoteCmd defines the parent "note" command.
func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Work with notes",
	}
	cmd.AddCommand(newNoteNewCmd())
	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteShowCmd())
	cmd.AddCommand(newNoteRenameCmd())
	cmd.AddCommand(newNoteCloseCmd())
	cmd.AddCommand(newNoteMoveCmd())
	cmd.AddCommand(newNoteSwitchCmd())
	cmd.AddCommand(newNoteEditCmd())
	cmd.AddCommand(newNoteRenderCmd())
	cmd.AddCommand(newNoteExportCmd())
	return cmd
}

// titleSource adapts a note list for fuzzy matching on titles.
type titleSource []models.Note

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// exactRef finds a note by ID or case-insensitive title. An empty ref means
// the active note.
func exactRef(store *notes.Store, ref string) (models.Note, bool) {
	if ref == "" {
		return store.Active()
	}
	if n, ok := store.Get(ref); ok {
		return n, true
	}
	for _, n := range store.Notes() {
		if strings.EqualFold(n.Title, ref) {
			return n, true
		}
	}
	return models.Note{}, false
}

// resolveRef finds a note by exact ID, then case-insensitive title, then the
// best fuzzy title match. An empty ref means the active note.
func resolveRef(store *notes.Store, ref string) (models.Note, error) {
	ref = strings.TrimSpace(ref)
	if n, ok := exactRef(store, ref); ok {
		return n, nil
	}
	if ref == "" {
		return models.Note{}, fmt.Errorf("no active note: %w", notes.ErrNotFound)
	}
	list := store.Notes()
	if best := util.Rank(ref, titleSource(list), 1); len(best) > 0 {
		return list[best[0]], nil
	}
	return models.Note{}, fmt.Errorf("%q: %w", ref, notes.ErrNotFound)
}

// resolveExactRef is resolveRef without the fuzzy fallback, for commands
// that change or remove the note. A near miss is reported as a hint.
func resolveExactRef(store *notes.Store, ref string) (models.Note, error) {
	ref = strings.TrimSpace(ref)
	if n, ok := exactRef(store, ref); ok {
		return n, nil
	}
	if ref == "" {
		return models.Note{}, fmt.Errorf("no active note: %w", notes.ErrNotFound)
	}
	list := store.Notes()
	if best := util.Rank(ref, titleSource(list), 1); len(best) > 0 {
		return models.Note{}, fmt.Errorf("%q (did you mean %q?): %w", ref, list[best[0]].Title, notes.ErrNotFound)
	}
	return models.Note{}, fmt.Errorf("%q: %w", ref, notes.ErrNotFound)
}

// completeRefs suggests note titles matching the typed prefix.
func completeRefs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	app, ok := appFrom(cmd)
	if !ok {
		root := cmd.Root()
		if root.PersistentPreRunE == nil || root.PersistentPreRunE(cmd, nil) != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if app, ok = appFrom(cmd); !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer app.Close()
	}
	list := app.Notes.Notes()
	var out []string
	for _, i := range util.Rank(toComplete, titleSource(list), 20) {
		out = append(out, list[i].Title)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
