package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Builder owns the ordered step list of one flow while it is edited.
// Mutations stay local and are mirrored into the draft store until Commit
// pushes them to the server. A Builder is not safe for concurrent use.
type Builder struct {
	flowID    string
	api       API
	drafts    *DraftStore
	committer *Committer
	logger    *logrus.Entry
	now       func() time.Time

	snapshot  []Step
	steps     []Step
	dirty     bool
	fromDraft bool
	history   []HistoryEntry
}

func NewBuilder(flowID string, api API, drafts *DraftStore, logger *logrus.Entry) *Builder {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithFields(logrus.Fields{"component": "builder", "flow_id": flowID})
	return &Builder{
		flowID:    flowID,
		api:       api,
		drafts:    drafts,
		committer: NewCommitter(api, logger),
		logger:    logger,
		now:       time.Now,
		snapshot:  []Step{},
		steps:     []Step{},
	}
}

// Load fetches the server list. A stored draft whose steps differ from it
// takes precedence.
func (b *Builder) Load(ctx context.Context) error {
	return b.load(ctx, true)
}

// Reload fetches the server list and ignores any draft.
func (b *Builder) Reload(ctx context.Context) error {
	return b.load(ctx, false)
}

func (b *Builder) load(ctx context.Context, useDraft bool) error {
	records, err := b.api.ListSteps(ctx, b.flowID)
	if err != nil {
		return &LoadError{Part: "steps", Err: err}
	}
	server := fromServerList(records, b.logger)
	b.snapshot = server
	b.steps = cloneSteps(server)
	b.fromDraft = false
	b.history = nil

	if useDraft {
		if draft := b.drafts.Read(b.flowID); draft != nil && draft.StepsDraft != nil {
			if canonical(draft.StepsDraft) != canonical(server) {
				b.steps = cloneSteps(draft.StepsDraft)
				b.fromDraft = true
				b.logger.WithField("updated_at", draft.UpdatedAt).Info("restored local draft")
			}
		}
	}
	b.refreshDirty()
	return nil
}

// Steps returns a copy of the current list.
func (b *Builder) Steps() []Step {
	return cloneSteps(b.steps)
}

// Snapshot returns a copy of the last known server list.
func (b *Builder) Snapshot() []Step {
	return cloneSteps(b.snapshot)
}

// Dirty reports whether the current list differs from the snapshot.
func (b *Builder) Dirty() bool {
	return b.dirty
}

// FromDraft reports whether the last load restored a local draft.
func (b *Builder) FromDraft() bool {
	return b.fromDraft
}

// History returns the reorders applied since the last load.
func (b *Builder) History() []HistoryEntry {
	return append([]HistoryEntry(nil), b.history...)
}

// Step looks a step up by id.
func (b *Builder) Step(id string) (Step, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Step{}, false
	}
	return cloneSteps(b.steps[i : i+1])[0], true
}

// AddStep appends a new step of the given kind. patch is applied on top of
// the palette defaults.
func (b *Builder) AddStep(kind PaletteKind, patch Patch) (Step, error) {
	step, err := Defaults(kind)
	if err != nil {
		return Step{}, err
	}
	step, err = ApplyPatch(step, patch)
	if err != nil {
		return Step{}, err
	}
	if err := ValidateStep(step); err != nil {
		return Step{}, err
	}
	step.ID = NewTempID()
	b.steps = append(b.steps, step)
	b.changed()
	b.logger.WithFields(logrus.Fields{"step_id": step.ID, "kind": kind}).Debug("step added")
	return step, nil
}

// EditStep merges patch into the step with the given id.
func (b *Builder) EditStep(id string, patch Patch) (Step, error) {
	i := b.indexOf(id)
	if i < 0 {
		return Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	step, err := ApplyPatch(b.steps[i], patch)
	if err != nil {
		return Step{}, err
	}
	if err := ValidateStep(step); err != nil {
		return Step{}, err
	}
	b.steps[i] = step
	b.changed()
	return step, nil
}

// DeleteStep removes the step with the given id once confirm agrees.
func (b *Builder) DeleteStep(id string, confirm Confirmer) error {
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	if confirm == nil || !confirm.Confirm(fmt.Sprintf("Delete step %q?", b.steps[i].Title)) {
		return ErrCancelled
	}
	b.steps = append(b.steps[:i:i], b.steps[i+1:]...)
	b.changed()
	return nil
}

// MoveStep drops the step at index from onto the step at index target.
// It reports false when the drop does not change the order.
func (b *Builder) MoveStep(from, target int) bool {
	moved, to, ok := Reorder(b.steps, from, target, DirectionOf(from, target))
	if !ok {
		return false
	}
	b.history = append(b.history, HistoryEntry{
		Type:      "reorder",
		FromIndex: from,
		ToIndex:   to,
		StepID:    b.steps[from].ID,
		Timestamp: b.now().UTC(),
	})
	b.steps = moved
	b.changed()
	return true
}

// Commit pushes the current list to the server. On success the refreshed
// server list becomes both snapshot and current list; the caller owns
// clearing the draft. On failure the list keeps its content and order,
// steps that were created get their server ids, and the snapshot absorbs
// whatever was applied so a retry only sends the remainder.
func (b *Builder) Commit(ctx context.Context) (Result, error) {
	res, err := b.committer.Commit(ctx, b.flowID, b.snapshot, b.steps)
	if err != nil {
		b.reconcile(res.Progress)
		return res, err
	}
	b.snapshot = res.Steps
	b.steps = cloneSteps(res.Steps)
	b.fromDraft = false
	b.refreshDirty()
	return res, nil
}

func (b *Builder) reconcile(p Progress) {
	if len(p.Created) == 0 && len(p.Updated) == 0 && len(p.Deleted) == 0 && !p.Ordered {
		return
	}
	for i, s := range b.steps {
		if created, ok := p.Created[s.ID]; ok {
			b.steps[i].ID = created.ID
		}
	}

	if p.Ordered {
		b.snapshot = cloneSteps(b.steps)
	} else {
		current := make(map[string]Step, len(b.steps))
		for _, s := range b.steps {
			current[s.ID] = s
		}
		deleted := make(map[string]struct{}, len(p.Deleted))
		for _, id := range p.Deleted {
			deleted[id] = struct{}{}
		}
		updated := make(map[string]struct{}, len(p.Updated))
		for _, id := range p.Updated {
			updated[id] = struct{}{}
		}

		snapshot := make([]Step, 0, len(b.snapshot)+len(p.Created))
		for _, s := range b.snapshot {
			if _, gone := deleted[s.ID]; gone {
				continue
			}
			if _, ok := updated[s.ID]; ok {
				s = current[s.ID]
			}
			snapshot = append(snapshot, s)
		}
		for _, s := range b.steps {
			for _, created := range p.Created {
				if created.ID == s.ID {
					snapshot = append(snapshot, s)
				}
			}
		}
		b.snapshot = cloneSteps(snapshot)
	}
	b.changed()
	b.logger.WithFields(logrus.Fields{
		"created": len(p.Created),
		"updated": len(p.Updated),
		"deleted": len(p.Deleted),
	}).Warn("commit stopped early; kept applied changes")
}

func (b *Builder) changed() {
	b.drafts.SaveSteps(b.flowID, b.steps)
	b.refreshDirty()
}

func (b *Builder) refreshDirty() {
	b.dirty = canonical(b.steps) != canonical(b.snapshot)
}

func (b *Builder) indexOf(id string) int {
	for i, s := range b.steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}
