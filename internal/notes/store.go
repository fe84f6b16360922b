package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mithrel/tabnote/internal/kv"
	"github.com/mithrel/tabnote/internal/notify"
	"github.com/mithrel/tabnote/pkg/api"
	"github.com/mithrel/tabnote/pkg/models"
)

var (
	ErrNotFound        = errors.New("note not found")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// DefaultDebounce is the quiescence delay before an edit is written.
const DefaultDebounce = time.Second

// Keys names the persisted entries the store owns.
type Keys struct {
	Notes  string
	Active string
}

// DefaultKeys returns the standard storage key names.
func DefaultKeys() Keys {
	return Keys{Notes: "notes", Active: "lastActiveNote"}
}

// Options configures a Store. Zero fields take defaults.
type Options struct {
	Keys      Keys
	Debounce  time.Duration
	Scheduler notify.Scheduler
	Now       func() time.Time
	NewID     func() string
	Notify    Notifier
	Logger    *slog.Logger
}

// Store is the ordered note collection plus the active selection, mirrored
// to a kv.Store on every mutation. Content edits are written after a
// debounce delay; every other mutation is written immediately.
type Store struct {
	ctx  context.Context
	kv   kv.Store
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	notes  []models.Note
	active string
	// dirty holds notes edited since the last debounced write.
	dirty map[string]struct{}
	// saved holds the hash of each note as last persisted.
	saved    map[string]string
	timer    notify.Timer
	gen      uint64
	notifier Notifier
}

// New returns a Store over store. Call Load before use.
func New(ctx context.Context, store kv.Store, opts Options) *Store {
	def := DefaultKeys()
	if opts.Keys.Notes == "" {
		opts.Keys.Notes = def.Notes
	}
	if opts.Keys.Active == "" {
		opts.Keys.Active = def.Active
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = notify.Realtime{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = api.NewID
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		ctx:      ctx,
		kv:       store,
		opts:     opts,
		log:      logger.With("component", "notes"),
		dirty:    make(map[string]struct{}),
		saved:    make(map[string]string),
		notifier: opts.Notify,
	}
}

// SetNotifier replaces the notice receiver.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// Load reads the persisted collection and selection. When nothing is stored,
// or the stored collection cannot be used, the store is seeded with the
// welcome note and the seed is persisted.
func (s *Store) Load() error {
	s.mu.Lock()
	notices, err := s.loadLocked()
	n := s.notifier
	s.mu.Unlock()
	s.emit(n, notices...)
	return err
}

func (s *Store) loadLocked() ([]Notice, error) {
	var notices []Notice
	var loaded []models.Note
	reseed := false

	raw, err := s.kv.Get(s.ctx, s.opts.Keys.Notes)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		reseed = true
	case errors.Is(err, kv.ErrCorrupt):
		s.log.Warn("stored notes failed integrity check", "error", err)
		notices = append(notices, s.salvageLocked(raw))
		reseed = true
	case err != nil:
		return nil, fmt.Errorf("load notes: %w", err)
	default:
		if jerr := json.Unmarshal([]byte(raw), &loaded); jerr != nil {
			s.log.Warn("stored notes are not valid JSON", "error", jerr)
			notices = append(notices, s.salvageLocked(raw))
			reseed = true
		} else if len(loaded) == 0 {
			reseed = true
		}
	}

	if reseed {
		s.notes = []models.Note{models.Seed(s.now())}
		s.active = models.SeedID
		s.dirty = make(map[string]struct{})
		s.saved = make(map[string]string)
		if err := s.persistLocked(true); err != nil {
			return notices, fmt.Errorf("persist seed: %w", err)
		}
		s.log.Debug("seeded note store")
		return notices, nil
	}

	s.notes = s.dedupe(loaded)
	s.dirty = make(map[string]struct{})
	s.saved = make(map[string]string, len(s.notes))
	for _, n := range s.notes {
		s.saved[n.ID] = api.NoteHash(n)
	}

	stored, err := s.kv.Get(s.ctx, s.opts.Keys.Active)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn("stored selection unreadable", "error", err)
		}
		stored = ""
	}
	if s.indexLocked(stored) >= 0 {
		s.active = stored
	} else {
		s.active = s.notes[0].ID
		if err := s.kv.Set(s.ctx, s.opts.Keys.Active, s.active); err != nil {
			return notices, fmt.Errorf("persist selection: %w", err)
		}
	}
	s.log.Debug("loaded notes", "count", len(s.notes), "active", s.active)
	return notices, nil
}

// salvageLocked copies an unusable stored collection aside.
func (s *Store) salvageLocked(raw string) Notice {
	if raw != "" {
		key := s.opts.Keys.Notes + ".corrupt"
		if err := s.kv.Set(s.ctx, key, raw); err != nil {
			s.log.Warn("could not back up unreadable notes", "key", key, "error", err)
		}
	}
	return Notice{Kind: NoticeWarning, Text: "Saved notes were unreadable; started with a fresh note"}
}

// dedupe re-issues empty or repeated identifiers.
func (s *Store) dedupe(in []models.Note) []models.Note {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Note, 0, len(in))
	for _, n := range in {
		if _, dup := seen[n.ID]; dup || n.ID == "" {
			old := n.ID
			n.ID = s.opts.NewID()
			s.log.Warn("re-issued duplicate note id", "old", old, "new", n.ID)
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Create appends an empty "Untitled" note, makes it active and persists.
func (s *Store) Create() (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := models.NewNote(s.opts.NewID(), models.DefaultTitle, "", s.now())
	next := append(slices.Clone(s.notes), n)
	if err := s.writeLocked(next, n.ID, true); err != nil {
		return models.Note{}, err
	}
	s.notes = next
	s.active = n.ID
	s.log.Debug("created note", "id", n.ID)
	return n, nil
}

// Close removes the note with id. Closing the last remaining note is refused
// with a warning notice and reports false without an error.
func (s *Store) Close(id string) (bool, error) {
	s.mu.Lock()
	if len(s.notes) <= 1 {
		n := s.notifier
		s.mu.Unlock()
		s.emit(n, Notice{Kind: NoticeWarning, Text: "Cannot close the last note"})
		return false, nil
	}
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false, fmt.Errorf("close %s: %w", id, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.notes), idx, idx+1)
	active := s.active
	wasActive := active == id
	if wasActive {
		active = next[0].ID
	}
	if err := s.writeLocked(next, active, wasActive); err != nil {
		return false, err
	}
	s.notes = next
	s.active = active
	delete(s.dirty, id)
	delete(s.saved, id)
	s.log.Debug("closed note", "id", id, "active", s.active)
	return true, nil
}

// Rename sets the title of note id. A blank title is ignored.
func (s *Store) Rename(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	next := slices.Clone(s.notes)
	next[idx].Title = title
	next[idx].Touch(s.now())
	if err := s.writeLocked(next, s.active, false); err != nil {
		return err
	}
	s.notes = next
	return nil
}

// EditContent replaces the content of note id in memory and (re)schedules
// the debounced write. LastModified changes only when that write runs.
func (s *Store) EditContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	if s.notes[idx].Content == content {
		return nil
	}
	s.notes[idx].Content = content
	s.dirty[id] = struct{}{}
	s.scheduleLocked()
	return nil
}

// Reorder moves the note at from to position to and persists.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.notes)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d to %d of %d: %w", from, to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}
	note := s.notes[from]
	next := slices.Delete(slices.Clone(s.notes), from, from+1)
	next = slices.Insert(next, to, note)
	if err := s.writeLocked(next, s.active, false); err != nil {
		return err
	}
	s.notes = next
	return nil
}

// SwitchActive selects note id and persists the selection only.
func (s *Store) SwitchActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("switch to %s: %w", id, ErrNotFound)
	}
	if s.active == id {
		return nil
	}
	if err := s.kv.Set(s.ctx, s.opts.Keys.Active, id); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}
	s.active = id
	return nil
}

// ManualSave cancels the pending write and persists the current state now.
// On failure the edits stay dirty so a later Flush or save retries them.
func (s *Store) ManualSave() error {
	s.mu.Lock()
	s.cancelLocked()
	err := s.saveDirtyLocked(true)
	title := ""
	if i := s.indexLocked(s.active); i >= 0 {
		title = s.notes[i].Title
	}
	n := s.notifier
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.emit(n, Notice{Kind: NoticeSaved, Text: fmt.Sprintf("Saved %q", title)})
	return nil
}

// Flush writes any unsaved edits immediately, whether or not a debounced
// write is still scheduled.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil && len(s.dirty) == 0 {
		return nil
	}
	s.cancelLocked()
	return s.flushLocked()
}

// Notes returns a copy of the collection in display order.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes)
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// ActiveID returns the selected note id.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns the selected note.
func (s *Store) Active() (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(s.active); i >= 0 {
		return s.notes[i], true
	}
	return models.Note{}, false
}

// Get returns note id.
func (s *Store) Get(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i], true
	}
	return models.Note{}, false
}

// Index returns the position of note id, or -1.
func (s *Store) Index(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id)
}

// Pending reports whether a debounced write is outstanding.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Dirty reports whether note id differs from its persisted form.
func (s *Store) Dirty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	return s.saved[id] != api.NoteHash(s.notes[i])
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

func (s *Store) now() time.Time {
	return s.opts.Now().UTC().Truncate(time.Millisecond)
}

func (s *Store) scheduleLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.opts.Scheduler.AfterFunc(s.opts.Debounce, func() { s.fire(gen) })
}

func (s *Store) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// fire runs the debounced write scheduled as generation gen. A stale
// generation means the task was replaced or cancelled after it started.
func (s *Store) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	err := s.flushLocked()
	n := s.notifier
	s.mu.Unlock()
	if err != nil {
		s.log.Error("autosave failed", "error", err)
		s.emit(n, Notice{Kind: NoticeWarning, Text: "Autosave failed: " + err.Error()})
		return
	}
	s.emit(n, Notice{Kind: NoticeAutosaved, Text: "Autosaved"})
}

func (s *Store) flushLocked() error {
	if len(s.dirty) == 0 {
		return nil
	}
	return s.saveDirtyLocked(false)
}

// saveDirtyLocked bumps lastModified of dirty notes and writes the
// collection. Memory and the dirty set change only once the write succeeds.
func (s *Store) saveDirtyLocked(withActive bool) error {
	next := slices.Clone(s.notes)
	if len(s.dirty) > 0 {
		now := s.now()
		for i := range next {
			if _, ok := s.dirty[next[i].ID]; ok {
				next[i].Touch(now)
			}
		}
	}
	if err := s.writeLocked(next, s.active, withActive); err != nil {
		return err
	}
	s.notes = next
	s.dirty = make(map[string]struct{})
	return nil
}

// persistLocked writes the in-memory collection, and the selection when
// withActive.
func (s *Store) persistLocked(withActive bool) error {
	return s.writeLocked(s.notes, s.active, withActive)
}

// writeLocked writes list (and active when withActive) without touching the
// in-memory state, so callers commit only after a successful write.
func (s *Store) writeLocked(list []models.Note, active string, withActive bool) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	pairs := []kv.Pair{{Key: s.opts.Keys.Notes, Value: string(data)}}
	if withActive {
		pairs = append(pairs, kv.Pair{Key: s.opts.Keys.Active, Value: active})
	}
	if err := s.kv.SetMany(s.ctx, pairs...); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	for _, n := range list {
		s.saved[n.ID] = api.NoteHash(n)
	}
	s.log.Debug("persisted notes", "count", len(list), "with_active", withActive)
	return nil
}

func (s *Store) emit(n Notifier, notices ...Notice) {
	if n == nil {
		return
	}
	for _, x := range notices {
		n(x)
	}
}
