package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gigtrack-cli/internal/model"
)

// DefaultSlotKey is the slot the collection lives under unless configured otherwise.
const DefaultSlotKey = "projects"

// ErrPosition is returned for positions outside the collection.
var ErrPosition = errors.New("position out of range")

// Store is the in-memory ordered collection of projects, mirrored to one slot.
//
// Every mutation rewrites the whole slot before returning. Store does no
// locking of its own; callers serialize access (see tracker.Controller).
type Store struct {
	slot     Slot
	key      string
	log      *slog.Logger
	projects []model.Project
}

func New(slot Slot, key string, logger *slog.Logger) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultSlotKey
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{slot: slot, key: key, log: logger}
}

func (s *Store) Key() string { return s.key }

// Load replaces the in-memory collection with the slot's content. A missing or
// malformed slot leaves the collection empty; only slot I/O errors are returned.
func (s *Store) Load(ctx context.Context) error {
	s.projects = nil
	b, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load slot %q: %w", s.key, err)
	}
	if !ok || len(b) == 0 {
		return nil
	}
	var ps []model.Project
	if err := json.Unmarshal(b, &ps); err != nil {
		s.log.Warn("discarding malformed slot data", "slot", s.key, "bytes", len(b), "err", err)
		return nil
	}
	if n := assignUniqueIDs(ps); n > 0 {
		s.log.Warn("reassigned duplicate project ids", "slot", s.key, "count", n)
	}
	s.projects = ps
	return nil
}

// Save serializes the full collection and overwrites the slot.
func (s *Store) Save(ctx context.Context) error {
	return s.write(ctx, s.projects)
}

// commit writes next to the slot and only then makes it the collection, so a
// failed write leaves memory matching what is stored.
func (s *Store) commit(ctx context.Context, next []model.Project) error {
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.projects = next
	return nil
}

func (s *Store) write(ctx context.Context, ps []model.Project) error {
	if ps == nil {
		ps = []model.Project{}
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	if err := s.slot.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("save slot %q: %w", s.key, err)
	}
	return nil
}

// Projects returns a copy of the collection in insertion order.
func (s *Store) Projects() []model.Project {
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) Len() int { return len(s.projects) }

func (s *Store) At(pos int) (model.Project, error) {
	if err := s.checkPosition(pos); err != nil {
		return model.Project{}, err
	}
	return s.projects[pos], nil
}

// IndexOf returns the position of the project with the given id, or -1.
func (s *Store) IndexOf(id int64) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// NextID returns a creation-timestamp id (unix ms) that is not yet in use.
func (s *Store) NextID(nowUnixMilli int64) int64 {
	id := nowUnixMilli
	for _, p := range s.projects {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

// Upsert replaces the project at *editTarget when it designates an existing
// position, and appends otherwise. It returns the stored project and its position.
func (s *Store) Upsert(ctx context.Context, p model.Project, editTarget *int) (model.Project, int, error) {
	pos := -1
	if editTarget != nil && *editTarget >= 0 && *editTarget < len(s.projects) {
		pos = *editTarget
	}
	switch {
	case p.ID == 0:
		p.ID = s.NextID(time.Now().UnixMilli())
	case s.idTakenElsewhere(p.ID, pos):
		p.ID = s.NextID(p.ID)
	}
	next := s.Projects()
	if pos >= 0 {
		next[pos] = p
	} else {
		next = append(next, p)
		pos = len(next) - 1
	}
	if err := s.commit(ctx, next); err != nil {
		return model.Project{}, -1, err
	}
	return p, pos, nil
}

// Remove deletes the project at pos; later projects shift one position down.
func (s *Store) Remove(ctx context.Context, pos int) (model.Project, error) {
	if err := s.checkPosition(pos); err != nil {
		return model.Project{}, err
	}
	removed := s.projects[pos]
	next := make([]model.Project, 0, len(s.projects)-1)
	next = append(next, s.projects[:pos]...)
	next = append(next, s.projects[pos+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return model.Project{}, err
	}
	return removed, nil
}

func (s *Store) SetFlag(ctx context.Context, pos int, flag model.Flag, value bool) (model.Project, error) {
	if err := s.checkPosition(pos); err != nil {
		return model.Project{}, err
	}
	next := s.Projects()
	if err := next[pos].Set(flag, value); err != nil {
		return model.Project{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return model.Project{}, err
	}
	return next[pos], nil
}

// Replace swaps the whole collection and saves it.
func (s *Store) Replace(ctx context.Context, ps []model.Project) error {
	return s.commit(ctx, append([]model.Project{}, ps...))
}

func (s *Store) Close() error {
	if s.slot == nil {
		return nil
	}
	return s.slot.Close()
}

func (s *Store) checkPosition(pos int) error {
	if pos < 0 || pos >= len(s.projects) {
		return fmt.Errorf("%w: %d (have %d)", ErrPosition, pos, len(s.projects))
	}
	return nil
}

func (s *Store) idTakenElsewhere(id int64, pos int) bool {
	for i := range s.projects {
		if i != pos && s.projects[i].ID == id {
			return true
		}
	}
	return false
}
