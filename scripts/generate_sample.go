//go:build ignore

// generate_sample fills a store with sample notes for trying the tab bar:
//
//	go run scripts/generate_sample.go sqlite:///tmp/tabnote-sample.db
package main

import (
	"context"
	"fmt"
	"log"
	mrand "math/rand"
	"os"
	"strings"

	"github.com/mithrel/tabnote/internal/kv"
	"github.com/mithrel/tabnote/internal/notes"
)

var words = []string{"plan", "ideas", "groceries", "meeting", "reading", "travel", "draft", "todo", "garden", "budget"}

func main() {
	url := "sqlite:///tmp/tabnote-sample.db"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}
	ctx := context.Background()
	store, err := kv.Open(ctx, url)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	s := notes.New(ctx, store, notes.Options{})
	if err := s.Load(); err != nil {
		log.Fatal(err)
	}

	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))
	const total = 12
	for i := 0; i < total; i++ {
		n, err := s.Create()
		if err != nil {
			log.Fatal(err)
		}
		w := words[mr.Intn(len(words))]
		title := fmt.Sprintf("%s %02d", strings.ToUpper(w[:1])+w[1:], i+1)
		if err := s.Rename(n.ID, title); err != nil {
			log.Fatal(err)
		}
		body := fmt.Sprintf("# %s\n\n## Notes\nSome **bold** text and *emphasis* for note %d.\n### Next\n- %s\n", title, i+1, words[mr.Intn(len(words))])
		if err := s.EditContent(n.ID, body); err != nil {
			log.Fatal(err)
		}
	}
	if err := s.Flush(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %d notes to %s\n", s.Len(), url)
}
