package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateGetEvict(t *testing.T) {
	st := NewStore()

	sess, err := st.Create("s1", [2]string{"p1", "p2"}, testBoard(), 60, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, st.Len())

	got, ok := st.Get("s1")
	require.True(t, ok)
	require.Same(t, sess, got)

	got, ok = st.SessionFor("p2")
	require.True(t, ok)
	require.Same(t, sess, got)

	st.Evict("s1")
	require.Equal(t, 0, st.Len())
	_, ok = st.Get("s1")
	require.False(t, ok)
	_, ok = st.SessionFor("p1")
	require.False(t, ok)
}

func TestStoreRejectsBusyPlayer(t *testing.T) {
	st := NewStore()

	_, err := st.Create("s1", [2]string{"p1", "p2"}, testBoard(), 60, time.Now())
	require.NoError(t, err)

	_, err = st.Create("s2", [2]string{"p2", "p3"}, testBoard(), 60, time.Now())
	require.ErrorIs(t, err, ErrPlayerBusy)

	// p2 frees up once the first session is evicted.
	st.Evict("s1")
	_, err = st.Create("s2", [2]string{"p2", "p3"}, testBoard(), 60, time.Now())
	require.NoError(t, err)
}

func TestStoreEvictUnknownIsNoop(t *testing.T) {
	st := NewStore()
	st.Evict("missing")
	require.Equal(t, 0, st.Len())
}
