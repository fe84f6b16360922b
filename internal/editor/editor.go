package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const TitlePrefix = "Title: "

// Compose creates the text presented to the editor.
func Compose(title, body string) string {
	var b bytes.Buffer
	b.WriteString("# tabnote\n")
	b.WriteString("# Lines starting with '#' above the '---' line are ignored.\n")
	b.WriteString(TitlePrefix)
	b.WriteString(title)
	b.WriteString("\n---\n")
	b.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Parse extracts the title and body from editor output. The body keeps its
// inner formatting; only the trailing newline added by Compose is dropped.
func Parse(s string) (title, body string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	head, rest, found := strings.Cut(s, "\n---\n")
	if !found {
		if strings.HasPrefix(s, "---\n") {
			return "", trimFinalNewline(s[len("---\n"):])
		}
		// No header at all: the whole file is the body.
		return "", trimFinalNewline(s)
	}
	for _, line := range strings.Split(head, "\n") {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "#") {
			continue
		}
		if t, ok := strings.CutPrefix(trim, strings.TrimSpace(TitlePrefix)); ok {
			title = strings.TrimSpace(t)
		}
	}
	return title, trimFinalNewline(rest)
}

func trimFinalNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForID returns a temp file path for a note ID.
func PathForID(id string) (string, error) {
	name := sanitize(id) + ".tabnote.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "tabnote", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "tabnote", "edit", name), nil
}

func sanitize(id string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// Streams are the terminal handles passed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams uses the process's own terminal.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// OpenAt opens the editor at path with initial content and returns the final
// bytes and whether they changed. The temp file is removed afterwards.
func OpenAt(ctx context.Context, path string, initial []byte, s Streams) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	defer os.Remove(path)

	ed, err := PreferredEditor()
	if err != nil {
		return nil, false, err
	}
	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	cmd := exec.CommandContext(ctx, "sh", "-c", "$EDITORCMD \"$FILEPATH\"")
	cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}
