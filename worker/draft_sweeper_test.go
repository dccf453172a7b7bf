package worker

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailflow/editor"
)

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestSweepOnceRemovesStaleAndCorruptDrafts(t *testing.T) {
	kv := editor.NewMemoryKV()
	drafts := editor.NewDraftStore(kv, quietLogger())

	drafts.SaveSteps("fresh", nil)
	require.NoError(t, kv.Set(editor.DraftKey("stale"), []byte(
		`{"automationPatch":{},"stepsDraft":[],"_updatedAt":"2000-01-01T00:00:00Z"}`)))
	require.NoError(t, kv.Set(editor.DraftKey("corrupt"), []byte("{not json")))

	sweeper := NewDraftSweeper(drafts, 24*time.Hour, time.Minute, quietLogger())

	removed := sweeper.SweepOnce()
	assert.Equal(t, 2, removed)
	assert.NotNil(t, drafts.Read("fresh"))
	assert.Nil(t, drafts.Read("stale"))
	assert.ElementsMatch(t, []string{"fresh"}, drafts.Flows())
}

func TestSweepOnceKeepsEverythingWithoutMaxAge(t *testing.T) {
	kv := editor.NewMemoryKV()
	drafts := editor.NewDraftStore(kv, quietLogger())
	require.NoError(t, kv.Set(editor.DraftKey("old"), []byte(
		`{"automationPatch":{},"stepsDraft":[],"_updatedAt":"2000-01-01T00:00:00Z"}`)))

	sweeper := NewDraftSweeper(drafts, 0, time.Minute, quietLogger())
	assert.Equal(t, 0, sweeper.SweepOnce())
}

func TestStartStopsWithContext(t *testing.T) {
	drafts := editor.NewDraftStore(editor.NewMemoryKV(), quietLogger())
	sweeper := NewDraftSweeper(drafts, time.Hour, 10*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
