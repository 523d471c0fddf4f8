// Package tracker wires user actions to the project store. Every surface (CLI,
// TUI, web) drives the same Controller.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gigtrack-cli/internal/export"
	"gigtrack-cli/internal/model"
	"gigtrack-cli/internal/statusutil"
	"gigtrack-cli/internal/store"
	"gigtrack-cli/internal/view"
)

var (
	ErrNameRequired = errors.New("project name is required")
	ErrNotConfirmed = errors.New("delete not confirmed")
)

type Config struct {
	Currency    string
	Rule        statusutil.Rule
	ExportLabel string
	// Now is the clock; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Controller owns the store and the edit marker. Its methods are serialized,
// so callbacks from concurrent surfaces run one at a time.
type Controller struct {
	mu    sync.Mutex
	store *store.Store

	// editing is the position being edited, nil when the form creates.
	editing *int

	currency string
	rule     statusutil.Rule
	label    string
	now      func() time.Time
	log      *slog.Logger
}

func New(st *store.Store, cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Rule == "" {
		cfg.Rule = statusutil.RuleDeliveredFirst
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = view.DefaultCurrency
	}
	return &Controller{
		store:    st,
		currency: cfg.Currency,
		rule:     cfg.Rule,
		label:    cfg.ExportLabel,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
}

// Options returns the view options for the current moment.
func (c *Controller) Options() view.Options {
	return view.Options{Currency: c.currency, Rule: c.rule, Today: c.now()}
}

func (c *Controller) Projects() []model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Projects()
}

// IndexOf returns the position of the project with id, or -1.
func (c *Controller) IndexOf(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.IndexOf(id)
}

// View returns the table for the given search query.
func (c *Controller) View(query string) view.Table {
	c.mu.Lock()
	all := c.store.Projects()
	c.mu.Unlock()
	return view.Search(all, query, c.Options())
}

// Row returns the display model of the project at pos.
func (c *Controller) Row(pos int) (view.Row, error) {
	c.mu.Lock()
	p, err := c.store.At(pos)
	c.mu.Unlock()
	if err != nil {
		return view.Row{}, err
	}
	return view.NewRow(p, pos, c.Options()), nil
}

// Editing reports the position currently being edited.
func (c *Controller) Editing() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return 0, false
	}
	return *c.editing, true
}

// EditForm returns the pre-filled form for the current edit, or an empty form.
func (c *Controller) EditForm() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return Form{}
	}
	p, err := c.store.At(*c.editing)
	if err != nil {
		return Form{}
	}
	return FormFromProject(p)
}

// BeginEdit switches the form to editing the project at pos.
func (c *Controller) BeginEdit(pos int) (Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.store.At(pos)
	if err != nil {
		return Form{}, err
	}
	c.editing = &pos
	return FormFromProject(p), nil
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}

// Submit creates a project, or updates the one being edited in place. Edits
// keep the project's id, creation time and flags.
func (c *Controller) Submit(ctx context.Context, f Form) (model.Project, int, error) {
	if strings.TrimSpace(f.Name) == "" {
		return model.Project{}, -1, ErrNameRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var p model.Project
	target := c.editing
	if target != nil {
		cur, err := c.store.At(*target)
		if err != nil {
			// The edited project is gone; fall back to creating.
			target = nil
		} else {
			p = cur
		}
	}
	if target == nil {
		now := c.now()
		p = model.Project{
			ID:        c.store.NextID(now.UnixMilli()),
			CreatedAt: now.UTC(),
		}
	}
	f.apply(&p)

	saved, pos, err := c.store.Upsert(ctx, p, target)
	if err != nil {
		return model.Project{}, -1, err
	}
	c.editing = nil
	c.log.Debug("project saved", "id", saved.ID, "position", pos, "edited", target != nil)
	return saved, pos, nil
}

// Delete removes the project at pos. confirmed must be true; the caller is
// responsible for asking the user.
func (c *Controller) Delete(ctx context.Context, pos int, confirmed bool) (model.Project, error) {
	if !confirmed {
		return model.Project{}, ErrNotConfirmed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.store.Remove(ctx, pos)
	if err != nil {
		return model.Project{}, err
	}
	if c.editing != nil {
		switch e := *c.editing; {
		case e == pos:
			c.editing = nil
		case e > pos:
			e--
			c.editing = &e
		}
	}
	c.log.Debug("project deleted", "id", removed.ID, "position", pos)
	return removed, nil
}

// SetFlag sets the delivered or paid flag of the project at pos.
func (c *Controller) SetFlag(ctx context.Context, pos int, flag model.Flag, value bool) (model.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.SetFlag(ctx, pos, flag, value)
}

// Toggle flips a flag and returns the updated project.
func (c *Controller) Toggle(ctx context.Context, pos int, flag model.Flag) (model.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.store.At(pos)
	if err != nil {
		return model.Project{}, err
	}
	cur := p.Delivered
	if flag == model.FlagPaid {
		cur = p.Paid
	}
	return c.store.SetFlag(ctx, pos, flag, !cur)
}

// Import replaces the collection with a JSON dump in the slot format.
func (c *Controller) Import(ctx context.Context, raw []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.store.Import(ctx, raw)
	if err != nil {
		return 0, err
	}
	c.editing = nil
	return n, nil
}

// SetExportLabel changes the prefix of exported file names.
func (c *Controller) SetExportLabel(label string) {
	c.mu.Lock()
	c.label = label
	c.mu.Unlock()
}

// Export renders the full, unfiltered collection. It returns export.ErrEmpty
// when there is nothing to export.
func (c *Controller) Export() (fileName string, data []byte, err error) {
	c.mu.Lock()
	all := c.store.Projects()
	c.mu.Unlock()
	data, err = export.CSV(all, c.Options())
	if err != nil {
		return "", nil, err
	}
	c.mu.Lock()
	label := c.label
	c.mu.Unlock()
	return export.FileName(label, c.now()), data, nil
}

// ExportTo writes the export into dir and returns the file path.
func (c *Controller) ExportTo(dir string) (string, error) {
	c.mu.Lock()
	all, label := c.store.Projects(), c.label
	c.mu.Unlock()
	return export.WriteFile(dir, label, all, c.Options(), c.now())
}
