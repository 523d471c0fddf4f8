package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gigtrack-cli/internal/model"
)

// Import replaces the collection with a JSON array in the slot format (for
// example a browser localStorage dump). Unlike Load, malformed input is an
// error because importing is an explicit user action.
func (s *Store) Import(ctx context.Context, raw []byte) (int, error) {
	var ps []model.Project
	if err := json.Unmarshal(raw, &ps); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	ps = normalizeImported(ps)
	if err := s.Replace(ctx, ps); err != nil {
		return 0, err
	}
	return len(ps), nil
}

func normalizeImported(ps []model.Project) []model.Project {
	out := make([]model.Project, 0, len(ps))
	for _, p := range ps {
		p.Name = strings.TrimSpace(p.Name)
		p.AssignedTo = strings.TrimSpace(p.AssignedTo)
		if p.AssignedTo == "" {
			p.AssignedTo = model.Unassigned
		}
		out = append(out, p)
	}
	assignUniqueIDs(out)
	for i := range out {
		if out[i].CreatedAt.IsZero() {
			out[i].CreatedAt = time.UnixMilli(out[i].ID).UTC()
		}
	}
	return out
}

// assignUniqueIDs gives every project with a missing or repeated id a fresh
// one above the current maximum. The first holder of an id keeps it. It
// returns how many ids changed.
func assignUniqueIDs(ps []model.Project) int {
	var maxID int64
	for _, p := range ps {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	seen := make(map[int64]bool, len(ps))
	changed := 0
	for i := range ps {
		if ps[i].ID <= 0 || seen[ps[i].ID] {
			maxID++
			ps[i].ID = maxID
			changed++
		}
		seen[ps[i].ID] = true
	}
	return changed
}
