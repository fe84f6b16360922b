package format

import (
	"encoding/json"
	"io"
)

// WriteNDJSONRows writes rows as newline-delimited JSON objects.
func WriteNDJSONRows(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
