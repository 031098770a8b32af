package connect

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexZinkM/bitebudget-wallet/internal/crypto"
)

var (
	ErrUnknownAttempt = errors.New("unknown or superseded connect attempt")
	ErrAttemptExpired = errors.New("connect attempt expired")
)

// Attempt owns the key material of one connect round trip.
type Attempt struct {
	ID        string
	Keypair   crypto.EncryptionKeypair
	Nonce     [crypto.NonceSize]byte
	CreatedAt time.Time
}

// Ticket is the public part of an attempt, safe to hand out.
type Ticket struct {
	ID        string
	PublicKey [crypto.KeySize]byte
	Nonce     [crypto.NonceSize]byte
}

func (a *Attempt) wipe() {
	a.Keypair.Wipe()
	clear(a.Nonce[:])
}

// Arena holds pending attempts by ID. Opening an attempt supersedes the others.
type Arena struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	ttl      time.Duration
	now      func() time.Time
	keygen   func() (crypto.EncryptionKeypair, error)
}

// NewArena returns an arena. ttl <= 0 disables expiry.
func NewArena(ttl time.Duration) *Arena {
	return &Arena{
		attempts: make(map[string]*Attempt),
		ttl:      ttl,
		now:      time.Now,
		keygen:   crypto.GenerateEncryptionKeypair,
	}
}

// Open creates a fresh keypair and nonce and invalidates older attempts.
func (a *Arena) Open() (Ticket, error) {
	kp, err := a.keygen()
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to create attempt keypair: %w", err)
	}
	defer kp.Wipe()

	nonce, err := crypto.NewNonce()
	if err != nil {
		return Ticket{}, err
	}

	att := &Attempt{
		ID:        uuid.NewString(),
		Keypair:   kp,
		Nonce:     nonce,
		CreatedAt: a.now(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
	a.attempts[att.ID] = att
	return Ticket{ID: att.ID, PublicKey: kp.Public, Nonce: nonce}, nil
}

// Take removes and returns the attempt with id. The caller must Release it.
func (a *Arena) Take(id string) (*Attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	att, ok := a.attempts[id]
	if !ok {
		return nil, ErrUnknownAttempt
	}
	delete(a.attempts, id)

	if a.expiredLocked(att) {
		att.wipe()
		return nil, ErrAttemptExpired
	}
	return att, nil
}

// Release wipes a taken attempt.
func (a *Arena) Release(att *Attempt) {
	if att != nil {
		att.wipe()
	}
}

// Expire removes attempts older than the TTL and returns their IDs.
func (a *Arena) Expire() []string {
	if a.ttl <= 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var expired []string
	for id, att := range a.attempts {
		if a.expiredLocked(att) {
			att.wipe()
			delete(a.attempts, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Reset wipes every pending attempt.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Arena) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.attempts)
}

func (a *Arena) resetLocked() {
	for id, att := range a.attempts {
		att.wipe()
		delete(a.attempts, id)
	}
}

func (a *Arena) expiredLocked(att *Attempt) bool {
	return a.ttl > 0 && a.now().Sub(att.CreatedAt) > a.ttl
}
