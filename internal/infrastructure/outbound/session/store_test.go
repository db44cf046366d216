package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/session"
	"github.com/sophialabs/xraydash/internal/testutil"
)

func newStore(t *testing.T) (*session.Store, *testutil.FixedClock) {
	t.Helper()
	clock := &testutil.FixedClock{T: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	s := session.NewStore(&testutil.StubGateway{}, clock, time.Minute)
	t.Cleanup(s.Stop)
	return s, clock
}

func TestStore_CreatesAndReusesSessions(t *testing.T) {
	s, _ := newStore(t)

	first, created := s.Get("")
	require.True(t, created)
	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Browser)
	require.NotNil(t, first.Launcher)

	again, created := s.Get(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created := s.Get("forged-id")
	assert.True(t, created)
	assert.NotEqual(t, "forged-id", other.ID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_EvictsIdleSessions(t *testing.T) {
	s, clock := newStore(t)

	idle, _ := s.Get("")
	clock.Advance(45 * time.Second)
	active, _ := s.Get("")
	clock.Advance(30 * time.Second)

	s.Evict()
	assert.Equal(t, 1, s.Len())

	_, created := s.Get(idle.ID)
	assert.True(t, created, "evicted session must not come back")
	_, created = s.Get(active.ID)
	assert.False(t, created)
}

func TestSession_Flash(t *testing.T) {
	s, _ := newStore(t)
	sess, _ := s.Get("")

	assert.Empty(t, sess.TakeFlash())
	sess.SetFlash("Please wait before running another demo.")
	assert.Equal(t, "Please wait before running another demo.", sess.TakeFlash())
	assert.Empty(t, sess.TakeFlash())
}
