package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendKeepsTokenTotalInSync(t *testing.T) {
	s := NewSession("demo")
	s.Append(RoleUser, "hello", 3)
	s.Append(RoleAssistant, "hi there", 7)

	assert.Equal(t, 10, s.Tokens())

	sum := 0
	for _, m := range s.History() {
		sum += m.TokensUsed
	}
	assert.Equal(t, s.Tokens(), sum)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	s := store.New("round trip")
	s.Append(RoleUser, "first", 2)
	s.Append(RoleAssistant, "second", 5)
	require.NoError(t, store.Save())

	loaded, err := store.Load(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "round trip", loaded.Title)
	assert.Equal(t, 7, loaded.TotalTokens)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, RoleUser, loaded.Messages[0].Role)
	assert.Equal(t, "first", loaded.Messages[0].Content)
	assert.Same(t, loaded, store.Active())
}

func TestListSortsByLastModifiedDescending(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	older := NewSession("older")
	older.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveSession(older))

	newer := NewSession("newer")
	newer.LastModified = time.Now()
	require.NoError(t, store.SaveSession(newer))

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "newer", infos[0].Title)
	assert.Equal(t, "older", infos[1].Title)
}

func TestDeleteClearsActivePointer(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	s := store.New("doomed")
	require.NoError(t, store.Save())

	require.NoError(t, store.Delete(s.ID))
	assert.Nil(t, store.Active())

	_, err = store.Load(s.ID)
	assert.Error(t, err)
}

func TestDeleteOtherSessionKeepsActive(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	other := NewSession("other")
	require.NoError(t, store.SaveSession(other))

	active := store.New("active")
	require.NoError(t, store.Save())

	require.NoError(t, store.Delete(other.ID))
	require.NotNil(t, store.Active())
	assert.Equal(t, active.ID, store.Active().ID)
}

func TestRecentReturnsWindow(t *testing.T) {
	s := NewSession("window")
	for i := 0; i < 5; i++ {
		s.Append(RoleUser, "msg", 1)
	}

	assert.Len(t, s.Recent(3), 3)
	assert.Len(t, s.Recent(0), 5)
	assert.Len(t, s.Recent(10), 5)
}
