package editor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	drafts := NewDraftStore(NewMemoryKV(), quietLogger())
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	drafts.now = func() time.Time { return fixed }

	name := "Renamed"
	drafts.SavePatch("f1", AutomationPatch{Name: &name})
	drafts.SaveSteps("f1", sampleSteps())

	got := drafts.Read("f1")
	require.NotNil(t, got)
	require.NotNil(t, got.AutomationPatch.Name)
	assert.Equal(t, "Renamed", *got.AutomationPatch.Name)
	assert.Nil(t, got.AutomationPatch.IsActive)
	assert.Equal(t, canonical(sampleSteps()), canonical(got.StepsDraft))
	assert.True(t, fixed.Equal(got.UpdatedAt))

	drafts.Clear("f1")
	assert.Nil(t, drafts.Read("f1"))
}

func TestDraftStoreMissingAndCorrupt(t *testing.T) {
	kv := NewMemoryKV()
	drafts := NewDraftStore(kv, quietLogger())

	assert.Nil(t, drafts.Read("nothing"))

	require.NoError(t, kv.Set(DraftKey("bad"), []byte("{\"stepsDraft\": [{\"kind\": \"teleport\"}]}")))
	assert.Nil(t, drafts.Read("bad"))

	require.NoError(t, kv.Set(DraftKey("garbage"), []byte("not json")))
	assert.Nil(t, drafts.Read("garbage"))
}

func TestDraftStorePatchOnlyHasNilSteps(t *testing.T) {
	drafts := NewDraftStore(NewMemoryKV(), quietLogger())
	active := true
	drafts.SavePatch("f1", AutomationPatch{IsActive: &active})

	got := drafts.Read("f1")
	require.NotNil(t, got)
	assert.Nil(t, got.StepsDraft)

	drafts.SaveSteps("f1", nil)
	got = drafts.Read("f1")
	require.NotNil(t, got)
	assert.NotNil(t, got.StepsDraft)
	assert.Empty(t, got.StepsDraft)
	require.NotNil(t, got.AutomationPatch.IsActive)
}

func TestDraftStoreSwallowsStorageFailures(t *testing.T) {
	drafts := NewDraftStore(failingKV{}, quietLogger())

	assert.NotPanics(t, func() {
		drafts.SaveSteps("f1", sampleSteps())
		drafts.SavePatch("f1", AutomationPatch{})
		drafts.Clear("f1")
	})
	assert.Nil(t, drafts.Read("f1"))
	assert.Empty(t, drafts.Flows())
}

func TestDraftStoreFlows(t *testing.T) {
	drafts := NewDraftStore(NewMemoryKV(), quietLogger())
	drafts.SaveSteps("b", nil)
	drafts.SaveSteps("a", nil)

	assert.Equal(t, []string{"a", "b"}, drafts.Flows())
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(filepath.Join(dir, "drafts"))
	require.NoError(t, err)

	key := DraftKey("flow/with:odd%chars")
	_, err = kv.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(key, []byte(`{"a":1}`)))
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	keys, err := kv.Keys(draftKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	entries, err := os.ReadDir(kv.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, kv.Delete(key))
	require.NoError(t, kv.Delete(key))
	_, err = kv.Get(key)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileKVBackedDraftsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	NewDraftStore(kv, quietLogger()).SaveSteps("f1", sampleSteps())

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	got := NewDraftStore(reopened, quietLogger()).Read("f1")
	require.NotNil(t, got)
	assert.Len(t, got.StepsDraft, len(sampleSteps()))
}
