package checkpoint

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcbackup/pkg/logger"
)

func newTestStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	return NewStore(fs, logger.NewTestLogger()), fs
}

func TestSaveAndLoad(t *testing.T) {
	store, _ := newTestStore()

	err := store.Save("last_message_general.txt", "123456789")
	require.NoError(t, err)

	id, ok := store.Load("last_message_general.txt")
	assert.True(t, ok)
	assert.Equal(t, "123456789", id)
}

func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore()

	id, ok := store.Load("does_not_exist.txt")
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestLoadTrimsWhitespace(t *testing.T) {
	store, fs := newTestStore()

	require.NoError(t, afero.WriteFile(fs, "cp.txt", []byte("  42\n"), 0644))

	id, ok := store.Load("cp.txt")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestLoadEmptyFileIsAbsent(t *testing.T) {
	store, fs := newTestStore()

	require.NoError(t, afero.WriteFile(fs, "cp.txt", []byte("   \n"), 0644))

	_, ok := store.Load("cp.txt")
	assert.False(t, ok)
}

func TestSaveRefusesEmptyID(t *testing.T) {
	store, _ := newTestStore()

	err := store.Save("cp.txt", "")
	assert.Error(t, err)
	assert.False(t, store.Exists("cp.txt"))
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := newTestStore()

	require.NoError(t, store.Save("cp.txt", "100"))
	require.NoError(t, store.Save("cp.txt", "200"))

	id, ok := store.Load("cp.txt")
	assert.True(t, ok)
	assert.Equal(t, "200", id)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	store, fs := newTestStore()

	require.NoError(t, store.Save("cp.txt", "100"))

	exists, err := afero.Exists(fs, "cp.txt.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore()

	require.NoError(t, store.Save("cp.txt", "100"))
	require.NoError(t, store.Delete("cp.txt"))
	assert.False(t, store.Exists("cp.txt"))

	// Deleting a missing checkpoint is not an error
	assert.NoError(t, store.Delete("cp.txt"))
}
