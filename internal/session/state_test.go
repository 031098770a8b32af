package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const address = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	assert.Equal(t, Disconnected, s.State())
	_, err := s.RequireConnected()
	assert.ErrorIs(t, err, ErrNotConnected)

	s.SetAwaiting("a1")
	assert.Equal(t, AwaitingCallback, s.State())
	assert.Equal(t, "a1", s.Snapshot().AttemptID)

	s.SetConnected(address, "sess")
	assert.True(t, s.IsConnected())
	addr, err := s.RequireConnected()
	require.NoError(t, err)
	assert.Equal(t, address, addr)
	ws, ok := s.WalletSession()
	assert.True(t, ok)
	assert.Equal(t, "sess", ws)

	s.Clear()
	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.False(t, snap.Connected)
	assert.Empty(t, snap.Address)
	assert.Empty(t, snap.Error)
}

func TestStoreFail(t *testing.T) {
	s := NewStore()
	s.SetAwaiting("a1")
	s.Fail("failed to connect wallet")

	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.Equal(t, "failed to connect wallet", snap.Error)
	assert.Empty(t, snap.AttemptID)

	s.SetAwaiting("a2")
	assert.Empty(t, s.Snapshot().Error)
}

func TestStoreReconnectKeepsSession(t *testing.T) {
	s := NewStore()
	s.SetConnected(address, "sess")
	s.SetAwaiting("a2")

	assert.True(t, s.IsConnected())
	assert.Equal(t, "a2", s.Snapshot().AttemptID)
}

func TestStoreFailAttempt(t *testing.T) {
	s := NewStore()
	s.SetAwaiting("a1")

	assert.False(t, s.FailAttempt("other", "expired"))
	assert.False(t, s.FailAttempt("", "expired"))
	assert.Equal(t, AwaitingCallback, s.State())

	assert.True(t, s.FailAttempt("a1", "expired"))
	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	assert.Equal(t, "expired", snap.Error)
}

func TestStoreFailAttemptKeepsConnected(t *testing.T) {
	s := NewStore()
	s.SetConnected(address, "sess")
	s.SetAwaiting("a2")

	assert.True(t, s.FailAttempt("a2", "rejected"))
	snap := s.Snapshot()
	assert.True(t, snap.Connected)
	assert.Equal(t, address, snap.Address)
	assert.Empty(t, snap.AttemptID)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetAwaiting("a")
			s.SetConnected(address, "sess")
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_, _ = s.Address()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsConnected())
}
