package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gigtrack-cli/internal/model"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(&FileSlot{Dir: dir}, "", nil), dir
}

func sampleProject(id int64, name string) model.Project {
	return model.Project{
		ID:              id,
		Name:            name,
		StartDate:       "2024-01-02",
		Deadline:        "2024-01-20",
		MyPayment:       model.ParseAmount("1500"),
		AssignedTo:      "Ali",
		AssignedPayment: model.ParseAmount("400.5"),
		CreatedAt:       time.UnixMilli(id).UTC(),
	}
}

func reload(t *testing.T, s *Store) *Store {
	t.Helper()
	fresh := New(s.slot, s.key, nil)
	if err := fresh.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return fresh
}

func TestStore_UpsertThenLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	a := sampleProject(1704873600000, "Logo")
	b := sampleProject(1704873600001, "Site, phase 2")
	b.Delivered = true
	if _, _, err := s.Upsert(ctx, a, nil); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if _, pos, err := s.Upsert(ctx, b, nil); err != nil || pos != 1 {
		t.Fatalf("upsert b: pos=%d err=%v", pos, err)
	}

	got := reload(t, s).Projects()
	if len(got) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(got))
	}
	for i, want := range []model.Project{a, b} {
		g := got[i]
		if g.ID != want.ID || g.Name != want.Name || g.StartDate != want.StartDate || g.Deadline != want.Deadline ||
			!g.MyPayment.Equal(want.MyPayment) || g.AssignedTo != want.AssignedTo || !g.AssignedPayment.Equal(want.AssignedPayment) ||
			g.Delivered != want.Delivered || g.Paid != want.Paid || !g.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("position %d: got %+v, want %+v", i, g, want)
		}
	}
}

func TestStore_UpsertWithEditTarget_ReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	for i, name := range []string{"A", "B", "C"} {
		if _, _, err := s.Upsert(ctx, sampleProject(int64(100+i), name), nil); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	edited := sampleProject(101, "B2")
	target := 1
	_, pos, err := s.Upsert(ctx, edited, &target)
	if err != nil {
		t.Fatalf("upsert edit: %v", err)
	}
	if pos != 1 {
		t.Fatalf("expected edit to stay at position 1, got %d", pos)
	}
	var names []string
	for _, p := range reload(t, s).Projects() {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"A", "B2", "C"}) {
		t.Fatalf("unexpected order after edit: %v", names)
	}

	// A target outside the collection appends.
	bad := 9
	if _, pos, err := s.Upsert(ctx, sampleProject(200, "D"), &bad); err != nil || pos != 3 {
		t.Fatalf("expected append at 3, got pos=%d err=%v", pos, err)
	}
}

func TestStore_UpsertKeepsIDsUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	if _, _, err := s.Upsert(ctx, sampleProject(500, "A"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	dup, _, err := s.Upsert(ctx, sampleProject(500, "B"), nil)
	if err != nil {
		t.Fatalf("upsert dup: %v", err)
	}
	if dup.ID == 500 {
		t.Fatalf("expected duplicate id to be bumped")
	}
	zero, _, err := s.Upsert(ctx, model.Project{Name: "C"}, nil)
	if err != nil {
		t.Fatalf("upsert zero: %v", err)
	}
	if zero.ID <= dup.ID {
		t.Fatalf("expected fresh id above %d, got %d", dup.ID, zero.ID)
	}
}

func TestStore_Remove_ShiftsLaterPositions(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	for i, name := range []string{"A", "B", "C", "D"} {
		if _, _, err := s.Upsert(ctx, sampleProject(int64(10+i), name), nil); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	removed, err := s.Remove(ctx, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != 11 {
		t.Fatalf("removed wrong project: %+v", removed)
	}

	got := reload(t, s).Projects()
	if len(got) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(got))
	}
	for i, wantID := range []int64{10, 12, 13} {
		if got[i].ID != wantID {
			t.Fatalf("position %d: expected id %d, got %d", i, wantID, got[i].ID)
		}
	}

	if _, err := s.Remove(ctx, 3); !errors.Is(err, ErrPosition) {
		t.Fatalf("expected ErrPosition, got %v", err)
	}
}

func TestStore_SetFlag_Persists(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	if _, _, err := s.Upsert(ctx, sampleProject(1, "A"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.SetFlag(ctx, 0, model.FlagPaid, true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	got := reload(t, s).Projects()[0]
	if !got.Paid || got.Delivered {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if _, err := s.SetFlag(ctx, -1, model.FlagPaid, true); !errors.Is(err, ErrPosition) {
		t.Fatalf("expected ErrPosition, got %v", err)
	}
}

func TestStore_Load_MalformedSlotIsEmpty(t *testing.T) {
	s, dir := newFileStore(t)
	if err := os.WriteFile(filepath.Join(dir, "projects.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Len())
	}
}

func TestStore_Load_MissingSlotIsEmpty(t *testing.T) {
	s, _ := newFileStore(t)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty collection")
	}
}

func TestStore_SaveEmpty_WritesArray(t *testing.T) {
	s, dir := newFileStore(t)
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "projects.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("expected [], got %s", b)
	}
}

func TestFileSlot_KeepsBackupOfPreviousValue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := &FileSlot{Dir: dir}
	if err := f.Put(ctx, "projects", []byte(`[1]`)); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := f.Put(ctx, "projects", []byte(`[2]`)); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	bak, err := os.ReadFile(filepath.Join(dir, "projects.json.bak"))
	if err != nil {
		t.Fatalf("read bak: %v", err)
	}
	if string(bak) != `[1]` {
		t.Fatalf("unexpected backup: %s", bak)
	}
	if _, _, err := f.Get(ctx, "../escape"); err == nil {
		t.Fatalf("expected key validation error")
	}
}

func TestStore_Import_NormalizesRecords(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	raw := []byte(`[
		{"id": 5, "name": " Logo ", "startDate": "2024-01-01", "deadline": "2024-01-05", "myPayment": 100, "assignedTo": "", "assignedPayment": 0},
		{"id": 5, "name": "Dup", "myPayment": "20", "assignedTo": "Sara", "isPaid": true}
	]`)
	n, err := s.Import(ctx, raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported, got %d", n)
	}
	got := reload(t, s).Projects()
	if got[0].Name != "Logo" || got[0].AssignedTo != model.Unassigned {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].ID == got[0].ID {
		t.Fatalf("expected duplicate id to be renumbered")
	}
	if got[1].CreatedAt.IsZero() || !got[1].Paid {
		t.Fatalf("unexpected second record: %+v", got[1])
	}

	if _, err := s.Import(ctx, []byte(`nope`)); err == nil {
		t.Fatalf("expected malformed import to fail")
	}
	if s.Len() != 2 {
		t.Fatalf("failed import must not touch the collection")
	}
}

func TestStore_Load_ReassignsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s, dir := newFileStore(t)
	raw := `[{"id":5,"name":"First"},{"id":5,"name":"Second"},{"id":0,"name":"Third"}]`
	if err := os.WriteFile(filepath.Join(dir, "projects.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	ps := s.Projects()
	if ps[0].ID != 5 || ps[1].ID != 6 || ps[2].ID != 7 {
		t.Fatalf("expected ids 5,6,7; got %d,%d,%d", ps[0].ID, ps[1].ID, ps[2].ID)
	}
	if got := s.IndexOf(ps[1].ID); got != 1 {
		t.Fatalf("expected Second to resolve to position 1; got %d", got)
	}

	removed, err := s.Remove(ctx, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Name != "Second" {
		t.Fatalf("expected Second removed; got %q", removed.Name)
	}
	if got := reload(t, s).Projects(); len(got) != 2 || got[0].Name != "First" || got[1].Name != "Third" {
		t.Fatalf("unexpected collection after remove: %+v", got)
	}
}

type failingSlot struct {
	Slot
	fail bool
}

func (f *failingSlot) Put(ctx context.Context, key string, b []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Slot.Put(ctx, key, b)
}

func TestStore_FailedWriteLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{Slot: &FileSlot{Dir: t.TempDir()}}
	s := New(slot, "", nil)
	if _, _, err := s.Upsert(ctx, sampleProject(1, "A"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, _, err := s.Upsert(ctx, sampleProject(2, "B"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	before := s.Projects()

	slot.fail = true
	if _, _, err := s.Upsert(ctx, sampleProject(3, "C"), nil); err == nil {
		t.Fatalf("expected append to fail")
	}
	edit := 0
	if _, _, err := s.Upsert(ctx, sampleProject(1, "Renamed"), &edit); err == nil {
		t.Fatalf("expected edit to fail")
	}
	if _, err := s.Remove(ctx, 0); err == nil {
		t.Fatalf("expected remove to fail")
	}
	if _, err := s.SetFlag(ctx, 1, model.FlagPaid, true); err == nil {
		t.Fatalf("expected set flag to fail")
	}
	if err := s.Replace(ctx, nil); err == nil {
		t.Fatalf("expected replace to fail")
	}
	if !reflect.DeepEqual(s.Projects(), before) {
		t.Fatalf("collection changed after failed writes: %+v", s.Projects())
	}

	// The next successful write must not carry any of the failed changes.
	slot.fail = false
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := reload(t, s).Projects(); !reflect.DeepEqual(got, before) {
		t.Fatalf("stored collection changed: %+v", got)
	}
}
