package session

import (
	"errors"
	"sync"
	"time"
)

// ErrNotConnected gates actions that need a connected wallet.
var ErrNotConnected = errors.New("wallet is not connected")

type State string

const (
	Disconnected     State = "disconnected"
	AwaitingCallback State = "awaiting_callback"
	Connected        State = "connected"
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	State         State     `json:"state"`
	Connected     bool      `json:"connected"`
	Address       string    `json:"address,omitempty"`
	AttemptID     string    `json:"attempt_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	LastSignature string    `json:"last_signature,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store holds the single wallet session of the app.
type Store struct {
	mu            sync.RWMutex
	state         State
	address       string
	walletSession string
	attemptID     string
	lastErr       string
	lastSignature string
	updatedAt     time.Time
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{state: Disconnected, now: time.Now, updatedAt: time.Now()}
}

// SetAwaiting records a pending attempt. A connected session stays connected
// until the new attempt succeeds or fails.
func (s *Store) SetAwaiting(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		s.state = AwaitingCallback
	}
	s.attemptID = attemptID
	s.lastErr = ""
	s.touch()
}

func (s *Store) SetConnected(address, walletSession string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Connected
	s.address = address
	s.walletSession = walletSession
	s.attemptID = ""
	s.lastErr = ""
	s.lastSignature = ""
	s.touch()
}

// Fail resets to Disconnected and keeps reason for the user.
func (s *Store) Fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.lastErr = reason
	s.touch()
}

// Clear resets to Disconnected without an error.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.lastErr = ""
	s.touch()
}

// FailAttempt drops a pending attempt if it is still the current one. A session
// waiting on it becomes Disconnected with reason; a connected one stays connected.
func (s *Store) FailAttempt(attemptID, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attemptID == "" || s.attemptID != attemptID {
		return false
	}
	s.attemptID = ""
	if s.state == AwaitingCallback {
		s.state = Disconnected
		s.lastErr = reason
	}
	s.touch()
	return true
}

func (s *Store) SetLastSignature(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSignature = sig
	s.touch()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) IsConnected() bool {
	return s.State() == Connected
}

func (s *Store) Address() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.state == Connected
}

// WalletSession returns the opaque session token issued by the wallet.
func (s *Store) WalletSession() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.walletSession, s.state == Connected
}

// RequireConnected returns the address or ErrNotConnected.
func (s *Store) RequireConnected() (string, error) {
	addr, ok := s.Address()
	if !ok {
		return "", ErrNotConnected
	}
	return addr, nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:         s.state,
		Connected:     s.state == Connected,
		Address:       s.address,
		AttemptID:     s.attemptID,
		Error:         s.lastErr,
		LastSignature: s.lastSignature,
		UpdatedAt:     s.updatedAt,
	}
}

func (s *Store) reset() {
	s.state = Disconnected
	s.address = ""
	s.walletSession = ""
	s.attemptID = ""
	s.lastSignature = ""
}

func (s *Store) touch() {
	s.updatedAt = s.now()
}
