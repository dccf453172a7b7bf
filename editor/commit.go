package editor

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"mailflow/models"
)

// Progress records which calls of a commit went through. It is filled in
// even when the commit fails half way.
type Progress struct {
	// Created maps temporary ids to the records the server created.
	Created map[string]models.StepRecord
	Updated []string
	Deleted []string
	// Ordered is true once the stepCount pass finished.
	Ordered bool
}

// Result is the outcome of a commit.
type Result struct {
	Plan     Plan
	Progress Progress
	// Steps is the list re-fetched from the server after the commit.
	Steps []Step
}

// Committer reconciles a local step list with the server.
type Committer struct {
	api    API
	logger *logrus.Entry
}

func NewCommitter(api API, logger *logrus.Entry) *Committer {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Committer{api: api, logger: logger.WithField("component", "commit")}
}

// Commit creates, updates and deletes steps so that the server matches
// current, then rewrites every stepCount and re-reads the list. Creates,
// updates and deletes run one after another; the first failure stops the
// commit and nothing already applied is undone.
func (c *Committer) Commit(ctx context.Context, flowID string, original, current []Step) (Result, error) {
	plan := Diff(original, current)
	res := Result{
		Plan:     plan,
		Progress: Progress{Created: map[string]models.StepRecord{}},
	}
	log := c.logger.WithFields(logrus.Fields{
		"flow_id": flowID,
		"creates": len(plan.Created),
		"updates": len(plan.Updated),
		"deletes": len(plan.Deleted),
	})
	log.Debug("commit started")

	position := make(map[string]int, len(current))
	for i, s := range current {
		position[s.ID] = i + 1
	}

	for _, s := range plan.Created {
		rec := ToServer(s)
		rec.FlowID = flowID
		rec.StepCount = position[s.ID]
		created, err := c.api.CreateStep(ctx, flowID, rec)
		if err != nil {
			return res, &CommitError{Phase: "create", StepID: s.ID, Err: err}
		}
		res.Progress.Created[s.ID] = created
	}

	withRealIDs := make([]Step, len(current))
	for i, s := range current {
		if created, ok := res.Progress.Created[s.ID]; ok {
			s.ID = created.ID
		}
		withRealIDs[i] = s
	}
	realPosition := make(map[string]int, len(withRealIDs))
	for i, s := range withRealIDs {
		realPosition[s.ID] = i + 1
	}

	for _, s := range plan.Updated {
		id := s.ID
		if created, ok := res.Progress.Created[id]; ok {
			id = created.ID
		}
		update := models.FullUpdate(ToServer(s), realPosition[id])
		if err := c.api.UpdateStep(ctx, flowID, id, update); err != nil {
			return res, &CommitError{Phase: "update", StepID: id, Err: err}
		}
		res.Progress.Updated = append(res.Progress.Updated, id)
	}

	for _, s := range plan.Deleted {
		if err := c.api.DeleteStep(ctx, flowID, s.ID); err != nil {
			return res, &CommitError{Phase: "delete", StepID: s.ID, Err: err}
		}
		res.Progress.Deleted = append(res.Progress.Deleted, s.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range withRealIDs {
		id, count := s.ID, i+1
		g.Go(func() error {
			if err := c.api.UpdateStep(gctx, flowID, id, models.OrderUpdate(count)); err != nil {
				return &CommitError{Phase: "order", StepID: id, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Progress.Ordered = true

	records, err := c.api.ListSteps(ctx, flowID)
	if err != nil {
		return res, &CommitError{Phase: "refresh", Err: err}
	}
	res.Steps = fromServerList(records, c.logger)
	log.Info("commit finished")
	return res, nil
}

// fromServerList sorts records by stepCount and translates them, skipping
// records of unknown type.
func fromServerList(records []models.StepRecord, logger *logrus.Entry) []Step {
	sorted := append([]models.StepRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StepCount < sorted[j].StepCount
	})
	steps := make([]Step, 0, len(sorted))
	for _, rec := range sorted {
		step, err := FromServer(rec)
		if err != nil {
			logger.WithError(err).WithField("step_id", rec.ID).Warn("skipping step")
			continue
		}
		steps = append(steps, step)
	}
	return steps
}
