package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreagentic/swarm/pkg/domain"
)

func TestMessageRepository_BySessionIsChronological(t *testing.T) {
	r := NewMessageRepository()
	base := time.Now()
	require.NoError(t, r.Create(&domain.Message{ID: "m2", SessionID: "s1", Timestamp: base.Add(2 * time.Second)}))
	require.NoError(t, r.Create(&domain.Message{ID: "m1", SessionID: "s1", Timestamp: base.Add(1 * time.Second)}))
	require.NoError(t, r.Create(&domain.Message{ID: "m3", SessionID: "s1", Timestamp: base.Add(3 * time.Second)}))

	msgs, err := r.BySession("s1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestMessageRepository_RecentWindowsToLastN(t *testing.T) {
	r := NewMessageRepository()
	base := time.Now()
	for i := 0; i < 15; i++ {
		require.NoError(t, r.Create(&domain.Message{
			ID:        string(rune('a' + i)),
			SessionID: "s1",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	recent, err := r.Recent("s1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "f", recent[0].ID, "window must keep only the last 10, oldest-of-window first")
	assert.Equal(t, "o", recent[9].ID)
}

func TestMessageRepository_ByID(t *testing.T) {
	r := NewMessageRepository()
	require.NoError(t, r.Create(&domain.Message{ID: "m1", SessionID: "s1", Content: "hello"}))

	got, err := r.ByID("m1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
}

func TestMessageRepository_DeleteBySession(t *testing.T) {
	r := NewMessageRepository()
	require.NoError(t, r.Create(&domain.Message{ID: "m1", SessionID: "s1"}))
	require.NoError(t, r.Create(&domain.Message{ID: "m2", SessionID: "s2"}))

	require.NoError(t, r.DeleteBySession("s1"))

	remaining, err := r.BySession("s1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	other, err := r.BySession("s2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
