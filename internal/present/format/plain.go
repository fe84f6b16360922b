package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/tabnote/pkg/models"
)

// TSV columns: position, active, id, title, modified_unix_ms
var headerLine = "pos\tactive\tid\ttitle\tmodified_unix_ms\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func marker(active bool) string {
	if active {
		return "*"
	}
	return ""
}

func WritePlainRows(w io.Writer, rows []Row, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, r := range rows {
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%d\n",
			r.Position, marker(r.Active), esc(r.ID), esc(r.Title), r.LastModified.UnixMilli())
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}

// WritePlainNote prints a short header block followed by the raw content.
func WritePlainNote(w io.Writer, n models.Note) error {
	_, err := fmt.Fprintf(w, "id: %s\ntitle: %s\nmodified: %s\n\n%s\n",
		n.ID, n.Title, n.LastModified.Local().Format(time.RFC3339), n.Content)
	return err
}
