package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/tabnote/internal/kv"
	"github.com/mithrel/tabnote/internal/notify"
	"github.com/mithrel/tabnote/pkg/models"
)

// recordingKV counts writes per key on top of an in-memory store.
type recordingKV struct {
	*kv.Mem
	mu     sync.Mutex
	writes map[string][]string
	fail   error // returned once by the next write
}

func newRecordingKV() *recordingKV {
	return &recordingKV{Mem: kv.NewMem(), writes: make(map[string][]string)}
}

func (r *recordingKV) record(key, value string) {
	r.mu.Lock()
	r.writes[key] = append(r.writes[key], value)
	r.mu.Unlock()
}

// failNext makes the next Set or SetMany return err without writing.
func (r *recordingKV) failNext(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *recordingKV) takeFailure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.fail
	r.fail = nil
	return err
}

func (r *recordingKV) Set(ctx context.Context, key, value string) error {
	if err := r.takeFailure(); err != nil {
		return err
	}
	r.record(key, value)
	return r.Mem.Set(ctx, key, value)
}

func (r *recordingKV) SetMany(ctx context.Context, pairs ...kv.Pair) error {
	if err := r.takeFailure(); err != nil {
		return err
	}
	for _, p := range pairs {
		r.record(p.Key, p.Value)
	}
	return r.Mem.SetMany(ctx, pairs...)
}

func (r *recordingKV) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes[key])
}

func (r *recordingKV) last(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.writes[key]
	if len(w) == 0 {
		return ""
	}
	return w[len(w)-1]
}

type harness struct {
	store   *Store
	kv      *recordingKV
	sched   *notify.Manual
	clock   time.Time
	notices []Notice
}

func (h *harness) advanceClock(d time.Duration) { h.clock = h.clock.Add(d) }

func newHarness(t *testing.T, backing *recordingKV) *harness {
	t.Helper()
	if backing == nil {
		backing = newRecordingKV()
	}
	h := &harness{
		kv:    backing,
		sched: &notify.Manual{},
		clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	var seq int
	h.store = New(context.Background(), backing, Options{
		Debounce:  500 * time.Millisecond,
		Scheduler: h.sched,
		Now:       func() time.Time { return h.clock },
		NewID: func() string {
			seq++
			return fmt.Sprintf("n%d", seq)
		},
		Notify: func(n Notice) { h.notices = append(h.notices, n) },
	})
	require.NoError(t, h.store.Load())
	return h
}

func decodeNotes(t *testing.T, raw string) []models.Note {
	t.Helper()
	var out []models.Note
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestLoadFreshSeedsWelcome(t *testing.T) {
	h := newHarness(t, nil)

	ns := h.store.Notes()
	require.Len(t, ns, 1)
	assert.Equal(t, models.SeedTitle, ns[0].Title)
	assert.Equal(t, models.SeedID, ns[0].ID)
	assert.Equal(t, models.SeedID, h.store.ActiveID())

	persisted := decodeNotes(t, h.kv.last("notes"))
	require.Len(t, persisted, 1)
	assert.Equal(t, models.SeedTitle, persisted[0].Title)
	assert.Equal(t, models.SeedID, h.kv.last("lastActiveNote"))
}

func TestLoadCorruptFallsBackToSeed(t *testing.T) {
	backing := newRecordingKV()
	require.NoError(t, backing.Mem.Set(context.Background(), "notes", "{not json"))

	h := newHarness(t, backing)

	ns := h.store.Notes()
	require.Len(t, ns, 1)
	assert.Equal(t, models.SeedTitle, ns[0].Title)
	assert.Equal(t, "{not json", backing.last("notes.corrupt"))
	require.NotEmpty(t, h.notices)
	assert.Equal(t, NoticeWarning, h.notices[0].Kind)
}

func TestLoadEmptyArraySeeds(t *testing.T) {
	backing := newRecordingKV()
	require.NoError(t, backing.Mem.Set(context.Background(), "notes", "[]"))

	h := newHarness(t, backing)
	require.Equal(t, 1, h.store.Len())
	assert.Empty(t, h.notices)
	assert.Equal(t, 0, backing.count("notes.corrupt"))
}

func TestLoadRestoresSelectionAndDedupes(t *testing.T) {
	backing := newRecordingKV()
	ctx := context.Background()
	raw := `[{"id":"a","title":"A","content":"x","lastModified":"2024-01-01T00:00:00Z"},
{"id":"a","title":"B","content":"y","lastModified":"2024-01-01T00:00:00Z"},
{"id":"c","title":"C","content":"z","lastModified":"2024-01-01T00:00:00Z"}]`
	require.NoError(t, backing.Mem.Set(ctx, "notes", raw))
	require.NoError(t, backing.Mem.Set(ctx, "lastActiveNote", "c"))

	h := newHarness(t, backing)
	ns := h.store.Notes()
	require.Len(t, ns, 3)
	assert.Equal(t, "a", ns[0].ID)
	assert.Equal(t, "n1", ns[1].ID, "duplicate id is re-issued")
	assert.Equal(t, "c", ns[2].ID)
	assert.Equal(t, "c", h.store.ActiveID())
}

func TestLoadUnknownSelectionFallsBackToFirst(t *testing.T) {
	backing := newRecordingKV()
	ctx := context.Background()
	require.NoError(t, backing.Mem.Set(ctx, "notes", `[{"id":"a","title":"A"},{"id":"b","title":"B"}]`))
	require.NoError(t, backing.Mem.Set(ctx, "lastActiveNote", "gone"))

	h := newHarness(t, backing)
	assert.Equal(t, "a", h.store.ActiveID())
	assert.Equal(t, "a", backing.last("lastActiveNote"))
}

func TestCreate(t *testing.T) {
	h := newHarness(t, nil)

	n, err := h.store.Create()
	require.NoError(t, err)
	assert.Equal(t, 2, h.store.Len())
	assert.Equal(t, n.ID, h.store.ActiveID())
	assert.Equal(t, models.DefaultTitle, n.Title)
	assert.Empty(t, n.Content)
	assert.True(t, n.LastModified.Equal(h.clock))

	persisted := decodeNotes(t, h.kv.last("notes"))
	require.Len(t, persisted, 2)
	assert.Equal(t, n.ID, persisted[1].ID)
	assert.Equal(t, n.ID, h.kv.last("lastActiveNote"))
}

func TestCloseLastNoteRefused(t *testing.T) {
	h := newHarness(t, nil)
	writes := h.kv.count("notes")

	closed, err := h.store.Close(models.SeedID)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, writes, h.kv.count("notes"), "refused close does not write")
	require.Len(t, h.notices, 1)
	assert.Equal(t, NoticeWarning, h.notices[0].Kind)
	assert.Contains(t, h.notices[0].Text, "last note")
}

func TestCloseActiveReselectsFirst(t *testing.T) {
	h := newHarness(t, nil)
	a, err := h.store.Create()
	require.NoError(t, err)
	b, err := h.store.Create()
	require.NoError(t, err)
	require.Equal(t, b.ID, h.store.ActiveID())

	closed, err := h.store.Close(b.ID)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, 2, h.store.Len())
	assert.Equal(t, models.SeedID, h.store.ActiveID())
	assert.Equal(t, models.SeedID, h.kv.last("lastActiveNote"))

	// closing an inactive note leaves the selection alone
	require.NoError(t, h.store.SwitchActive(a.ID))
	closed, err = h.store.Close(models.SeedID)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, a.ID, h.store.ActiveID())
	_, ok := h.store.Get(models.SeedID)
	assert.False(t, ok)
}

func TestCloseUnknown(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.store.Create()
	require.NoError(t, err)
	_, err = h.store.Close("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSelectionAlwaysValid(t *testing.T) {
	h := newHarness(t, nil)
	ops := []func(){
		func() { _, _ = h.store.Create() },
		func() { _, _ = h.store.Create() },
		func() { _, _ = h.store.Close(h.store.ActiveID()) },
		func() { _ = h.store.Reorder(0, h.store.Len()-1) },
		func() { _, _ = h.store.Close(h.store.Notes()[0].ID) },
		func() { _, _ = h.store.Close(h.store.ActiveID()) },
		func() { _, _ = h.store.Create() },
	}
	for i, op := range ops {
		op()
		_, ok := h.store.Get(h.store.ActiveID())
		require.True(t, ok, "step %d: selection %q not in store", i, h.store.ActiveID())
		require.GreaterOrEqual(t, h.store.Len(), 1)
	}
}

func TestRename(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	writes := h.kv.count("notes")

	require.NoError(t, h.store.Rename(id, "  "))
	n, _ := h.store.Get(id)
	assert.Equal(t, models.SeedTitle, n.Title)
	assert.Equal(t, writes, h.kv.count("notes"))
	assert.Empty(t, h.notices)

	h.advanceClock(time.Minute)
	require.NoError(t, h.store.Rename(id, "  Plans  "))
	n, _ = h.store.Get(id)
	assert.Equal(t, "Plans", n.Title)
	assert.True(t, n.LastModified.Equal(h.clock))
	assert.Equal(t, writes+1, h.kv.count("notes"))

	require.ErrorIs(t, h.store.Rename("nope", "x"), ErrNotFound)
}

func TestEditContentDebounces(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	before, _ := h.store.Get(id)
	writes := h.kv.count("notes")

	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, h.store.EditContent(id, c))
		h.sched.Advance(100 * time.Millisecond)
	}
	n, _ := h.store.Get(id)
	assert.Equal(t, "three", n.Content, "content is echoed immediately")
	assert.True(t, n.LastModified.Equal(before.LastModified), "lastModified waits for the write")
	assert.Equal(t, writes, h.kv.count("notes"))
	assert.True(t, h.store.Pending())
	assert.True(t, h.store.Dirty(id))

	h.advanceClock(time.Second)
	h.sched.Advance(500 * time.Millisecond)

	assert.Equal(t, writes+1, h.kv.count("notes"), "three edits collapse into one write")
	persisted := decodeNotes(t, h.kv.last("notes"))
	assert.Equal(t, "three", persisted[0].Content)
	assert.True(t, persisted[0].LastModified.Equal(h.clock))
	assert.False(t, h.store.Pending())
	assert.False(t, h.store.Dirty(id))
	require.NotEmpty(t, h.notices)
	assert.Equal(t, NoticeAutosaved, h.notices[len(h.notices)-1].Kind)
	assert.Equal(t, 0, h.sched.Pending())
}

func TestEditContentUnchangedDoesNotSchedule(t *testing.T) {
	h := newHarness(t, nil)
	n, _ := h.store.Active()
	require.NoError(t, h.store.EditContent(n.ID, n.Content))
	assert.False(t, h.store.Pending())
	require.ErrorIs(t, h.store.EditContent("nope", "x"), ErrNotFound)
}

func TestManualSave(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	require.NoError(t, h.store.EditContent(id, "draft"))
	writes := h.kv.count("notes")

	require.NoError(t, h.store.ManualSave())
	assert.Equal(t, writes+1, h.kv.count("notes"))
	assert.False(t, h.store.Pending())
	first := h.kv.last("notes")
	assert.Equal(t, "draft", decodeNotes(t, first)[0].Content)

	h.sched.Advance(time.Hour)
	assert.Equal(t, writes+1, h.kv.count("notes"), "cancelled autosave never runs")

	h.advanceClock(time.Minute)
	require.NoError(t, h.store.ManualSave())
	assert.Equal(t, first, h.kv.last("notes"), "saving twice persists identical state")

	last := h.notices[len(h.notices)-1]
	assert.Equal(t, NoticeSaved, last.Kind)
	assert.Equal(t, `Saved "Welcome"`, last.Text)
}

func TestFlush(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	require.NoError(t, h.store.Flush())

	require.NoError(t, h.store.EditContent(id, "pending"))
	require.NoError(t, h.store.Flush())
	assert.False(t, h.store.Pending())
	assert.Equal(t, "pending", decodeNotes(t, h.kv.last("notes"))[0].Content)
}

func TestManualSaveFailureKeepsEditsForFlush(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	require.NoError(t, h.store.EditContent(id, "unsaved"))
	writes := h.kv.count("notes")

	h.kv.failNext(errors.New("disk full"))
	require.Error(t, h.store.ManualSave())
	assert.Equal(t, writes, h.kv.count("notes"))
	assert.True(t, h.store.Dirty(id))

	require.NoError(t, h.store.Flush())
	assert.Equal(t, writes+1, h.kv.count("notes"))
	assert.Equal(t, "unsaved", decodeNotes(t, h.kv.last("notes"))[0].Content)
	assert.False(t, h.store.Dirty(id))
}

func TestAutosaveFailureKeepsEditsForFlush(t *testing.T) {
	h := newHarness(t, nil)
	id := h.store.ActiveID()
	require.NoError(t, h.store.EditContent(id, "later"))

	h.kv.failNext(errors.New("disk full"))
	h.sched.Advance(time.Second)
	assert.False(t, h.store.Pending())
	require.NotEmpty(t, h.notices)
	assert.Equal(t, NoticeWarning, h.notices[len(h.notices)-1].Kind)

	require.NoError(t, h.store.Flush())
	assert.Equal(t, "later", decodeNotes(t, h.kv.last("notes"))[0].Content)
}

func TestFailedWritesLeaveMemoryUnchanged(t *testing.T) {
	h := newHarness(t, nil)
	second, err := h.store.Create()
	require.NoError(t, err)
	before := h.store.Notes()

	h.kv.failNext(errors.New("disk full"))
	_, err = h.store.Create()
	require.Error(t, err)
	assert.Equal(t, before, h.store.Notes())
	assert.Equal(t, second.ID, h.store.ActiveID())

	h.kv.failNext(errors.New("disk full"))
	closed, err := h.store.Close(second.ID)
	require.Error(t, err)
	assert.False(t, closed)
	assert.Equal(t, before, h.store.Notes())
	assert.Equal(t, second.ID, h.store.ActiveID())

	h.kv.failNext(errors.New("disk full"))
	require.Error(t, h.store.Rename(second.ID, "Renamed"))
	n, _ := h.store.Get(second.ID)
	assert.Equal(t, models.DefaultTitle, n.Title)

	h.kv.failNext(errors.New("disk full"))
	require.Error(t, h.store.Reorder(0, 1))
	assert.Equal(t, before, h.store.Notes())

	h.kv.failNext(errors.New("disk full"))
	require.Error(t, h.store.SwitchActive(models.SeedID))
	assert.Equal(t, second.ID, h.store.ActiveID())
}

func TestLoadIgnoresCorruptSelection(t *testing.T) {
	backing := newRecordingKV()
	seeded := []models.Note{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}
	data, err := json.Marshal(seeded)
	require.NoError(t, err)
	require.NoError(t, backing.Mem.Set(context.Background(), "notes", string(data)))

	s := New(context.Background(), &corruptActiveKV{recordingKV: backing, raw: "b"}, Options{})
	require.NoError(t, s.Load())
	assert.Equal(t, "a", s.ActiveID())
	assert.Equal(t, "a", backing.last("lastActiveNote"))
}

// corruptActiveKV reports the selection key as failing its integrity check
// while still handing back the raw value, like the sqlite backend does.
type corruptActiveKV struct {
	*recordingKV
	raw string
}

func (c *corruptActiveKV) Get(ctx context.Context, key string) (string, error) {
	if key == "lastActiveNote" {
		return c.raw, kv.ErrCorrupt
	}
	return c.recordingKV.Get(ctx, key)
}

func TestReorder(t *testing.T) {
	h := newHarness(t, nil)
	a, _ := h.store.Create()
	b, _ := h.store.Create()
	ids := func() []string {
		var out []string
		for _, n := range h.store.Notes() {
			out = append(out, n.ID)
		}
		return out
	}
	before, _ := h.store.Get(a.ID)

	require.NoError(t, h.store.Reorder(0, 2))
	assert.Equal(t, []string{a.ID, b.ID, models.SeedID}, ids())
	persisted := decodeNotes(t, h.kv.last("notes"))
	assert.Equal(t, models.SeedID, persisted[2].ID)

	require.NoError(t, h.store.Reorder(2, 0))
	assert.Equal(t, []string{models.SeedID, a.ID, b.ID}, ids())

	after, _ := h.store.Get(a.ID)
	assert.True(t, before.LastModified.Equal(after.LastModified), "reorder leaves lastModified alone")

	require.ErrorIs(t, h.store.Reorder(0, 3), ErrIndexOutOfRange)
	require.ErrorIs(t, h.store.Reorder(-1, 0), ErrIndexOutOfRange)
}

func TestSwitchActivePersistsSelectionOnly(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.store.Create()
	require.NoError(t, err)
	notesWrites := h.kv.count("notes")

	require.NoError(t, h.store.SwitchActive(models.SeedID))
	assert.Equal(t, models.SeedID, h.store.ActiveID())
	assert.Equal(t, models.SeedID, h.kv.last("lastActiveNote"))
	assert.Equal(t, notesWrites, h.kv.count("notes"))

	require.ErrorIs(t, h.store.SwitchActive("missing"), ErrNotFound)
	assert.Equal(t, models.SeedID, h.store.ActiveID())
}

func TestRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	a, _ := h.store.Create()
	require.NoError(t, h.store.Rename(a.ID, "Groceries"))
	require.NoError(t, h.store.EditContent(a.ID, "- eggs\n- milk"))
	require.NoError(t, h.store.ManualSave())

	reloaded := New(context.Background(), h.kv, Options{})
	require.NoError(t, reloaded.Load())

	want := h.store.Notes()
	got := reloaded.Notes()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "note %d: %+v != %+v", i, want[i], got[i])
	}
	assert.Equal(t, h.store.ActiveID(), reloaded.ActiveID())
}

func TestConcurrentEditsWithRealtimeScheduler(t *testing.T) {
	backing := newRecordingKV()
	s := New(context.Background(), backing, Options{Debounce: 5 * time.Millisecond})
	require.NoError(t, s.Load())
	id := s.ActiveID()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.EditContent(id, fmt.Sprintf("edit %d", i))
			_ = s.Notes()
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return !s.Pending() }, 2*time.Second, 5*time.Millisecond)
	n, _ := s.Get(id)
	assert.Equal(t, n.Content, decodeNotes(t, backing.last("notes"))[0].Content)
}
