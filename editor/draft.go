package editor

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const draftKeyPrefix = "mailflow:automation-draft:"

// AutomationPatch holds staged, unsaved changes to the automation shell.
type AutomationPatch struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Empty reports whether nothing is staged.
func (p AutomationPatch) Empty() bool {
	return p.Name == nil && p.IsActive == nil
}

// Draft is the locally persisted, uncommitted state of one flow.
type Draft struct {
	AutomationPatch AutomationPatch `json:"automationPatch"`
	// StepsDraft is nil when the steps were never edited locally.
	StepsDraft []Step    `json:"stepsDraft"`
	UpdatedAt  time.Time `json:"_updatedAt"`
}

// DraftStore persists drafts per flow. Every operation is best-effort:
// storage failures are logged and otherwise ignored.
type DraftStore struct {
	kv     KV
	logger *logrus.Entry
	now    func() time.Time
}

func NewDraftStore(kv KV, logger *logrus.Entry) *DraftStore {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DraftStore{
		kv:     kv,
		logger: logger.WithField("component", "drafts"),
		now:    time.Now,
	}
}

// DraftKey namespaces a flow id.
func DraftKey(flowID string) string {
	return draftKeyPrefix + flowID
}

// Read returns the draft of flowID, or nil when there is none or it cannot
// be decoded.
func (d *DraftStore) Read(flowID string) *Draft {
	raw, err := d.kv.Get(DraftKey(flowID))
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			d.logger.WithError(err).WithField("flow_id", flowID).Debug("draft read failed")
		}
		return nil
	}
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		d.logger.WithError(err).WithField("flow_id", flowID).Debug("discarding corrupt draft")
		return nil
	}
	return &draft
}

// Write stores draft for flowID stamped with the current time.
func (d *DraftStore) Write(flowID string, draft Draft) {
	draft.UpdatedAt = d.now().UTC()
	raw, err := json.Marshal(draft)
	if err != nil {
		d.logger.WithError(err).WithField("flow_id", flowID).Debug("draft encode failed")
		return
	}
	if err := d.kv.Set(DraftKey(flowID), raw); err != nil {
		d.logger.WithError(err).WithField("flow_id", flowID).Debug("draft write failed")
	}
}

// Clear removes the draft of flowID.
func (d *DraftStore) Clear(flowID string) {
	if err := d.kv.Delete(DraftKey(flowID)); err != nil {
		d.logger.WithError(err).WithField("flow_id", flowID).Debug("draft clear failed")
	}
}

// SaveSteps replaces the step half of the draft, keeping any staged patch.
func (d *DraftStore) SaveSteps(flowID string, steps []Step) {
	draft := Draft{}
	if existing := d.Read(flowID); existing != nil {
		draft = *existing
	}
	if steps == nil {
		steps = []Step{}
	}
	draft.StepsDraft = steps
	d.Write(flowID, draft)
}

// SavePatch replaces the automation half of the draft, keeping any steps.
func (d *DraftStore) SavePatch(flowID string, patch AutomationPatch) {
	draft := Draft{}
	if existing := d.Read(flowID); existing != nil {
		draft = *existing
	}
	draft.AutomationPatch = patch
	d.Write(flowID, draft)
}

// Flows lists the flow ids that currently have a draft.
func (d *DraftStore) Flows() []string {
	keys, err := d.kv.Keys(draftKeyPrefix)
	if err != nil {
		d.logger.WithError(err).Debug("draft listing failed")
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, draftKeyPrefix))
	}
	return ids
}
