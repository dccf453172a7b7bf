package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailflow/models"
	"mailflow/utils"
)

func TestMemoryStoreStepsOrderAndAppend(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := &models.StepRecord{FlowID: "f1", StepType: models.StepTypeWait, Title: "a"}
	b := &models.StepRecord{FlowID: "f1", StepType: models.StepTypeSendMail, Title: "b"}
	other := &models.StepRecord{FlowID: "f2", StepType: models.StepTypeWait, Title: "x"}
	require.NoError(t, s.CreateStep(ctx, a))
	require.NoError(t, s.CreateStep(ctx, b))
	require.NoError(t, s.CreateStep(ctx, other))

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 1, a.StepCount)
	assert.Equal(t, 2, b.StepCount)
	assert.Equal(t, 1, other.StepCount)

	_, err := s.UpdateStep(ctx, "f1", a.ID, models.OrderUpdate(3))
	require.NoError(t, err)

	steps, err := s.ListSteps(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "b", steps[0].Title)
	assert.Equal(t, "a", steps[1].Title)
}

func TestMemoryStoreUpdateStepIsPartial(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := &models.StepRecord{FlowID: "f1", StepType: models.StepTypeSendMail, Title: "Welcome", SendMailSubject: "Hi"}
	require.NoError(t, s.CreateStep(ctx, rec))

	updated, err := s.UpdateStep(ctx, "f1", rec.ID, models.StepUpdate{Title: utils.Pointer("Welcome!")})
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", updated.Title)
	assert.Equal(t, "Hi", updated.SendMailSubject)
	assert.Equal(t, 1, updated.StepCount)
}

func TestMemoryStoreStepScopedToFlow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := &models.StepRecord{FlowID: "f1", StepType: models.StepTypeWait}
	require.NoError(t, s.CreateStep(ctx, rec))

	_, err := s.UpdateStep(ctx, "f2", rec.ID, models.OrderUpdate(1))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteStep(ctx, "f2", rec.ID), ErrNotFound)
	require.NoError(t, s.DeleteStep(ctx, "f1", rec.ID))
	assert.ErrorIs(t, s.DeleteStep(ctx, "f1", rec.ID), ErrNotFound)
}

func TestMemoryStoreAutomationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &models.Automation{Name: "Onboarding", ListID: "l1", WebsiteID: "w1"}
	require.NoError(t, s.CreateAutomation(ctx, a))
	require.NoError(t, s.CreateStep(ctx, &models.StepRecord{FlowID: a.ID, StepType: models.StepTypeWait}))

	got, err := s.UpdateAutomation(ctx, a.ID, models.FlowUpdateData{IsActive: utils.Pointer(true)})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Onboarding", got.Name)

	require.NoError(t, s.DeleteAutomation(ctx, a.ID))
	_, err = s.GetAutomation(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	steps, err := s.ListSteps(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestMemoryStoreListsByWebsite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateList(ctx, &models.SubscriberList{WebsiteID: "w1", Name: "Newsletter"}))
	require.NoError(t, s.CreateList(ctx, &models.SubscriberList{WebsiteID: "w2", Name: "Other"}))

	lists, err := s.ListLists(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Newsletter", lists[0].Name)
}
