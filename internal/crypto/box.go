package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"
)

const (
	NonceSize = 24

	// VersionByte prefixes some wallet ciphertexts and is stripped before opening.
	VersionByte = 0x01

	// MaxCiphertextSize bounds decoded ciphertexts before they reach the cipher.
	MaxCiphertextSize = 8 << 10
)

// NewNonce returns a random box nonce. Nonces are never reused across attempts.
func NewNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// SharedKey precomputes the box key between secret and peerPublic.
func SharedKey(peerPublic, secret *[KeySize]byte) *[KeySize]byte {
	shared := new([KeySize]byte)
	box.Precompute(shared, peerPublic, secret)
	return shared
}

// Open authenticates and decrypts a wallet ciphertext.
// A leading version byte is stripped; no other framing is attempted.
func Open(ciphertext, nonce, peerPublic []byte, secret *[KeySize]byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidNonce, NonceSize, len(nonce))
	}
	if len(peerPublic) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(peerPublic))
	}
	// X25519 ignores the top bit, so a set bit would alias another key.
	if peerPublic[KeySize-1]&0x80 != 0 {
		return nil, fmt.Errorf("%w: non-canonical encoding", ErrInvalidKey)
	}

	var n [NonceSize]byte
	var pub [KeySize]byte
	copy(n[:], nonce)
	copy(pub[:], peerPublic)

	shared := SharedKey(&pub, secret)
	defer clear(shared[:])

	return OpenShared(ciphertext, &n, shared)
}

// OpenShared is Open with a precomputed key.
func OpenShared(ciphertext []byte, nonce *[NonceSize]byte, shared *[KeySize]byte) ([]byte, error) {
	if len(ciphertext) > MaxCiphertextSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertextSize, len(ciphertext))
	}
	if len(ciphertext) > 0 && ciphertext[0] == VersionByte {
		ciphertext = ciphertext[1:]
	}
	if len(ciphertext) < box.Overhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertextSize, len(ciphertext))
	}

	plaintext, ok := box.OpenAfterPrecomputation(nil, ciphertext, nonce, shared)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Seal encrypts plaintext to peerPublic. versioned prepends VersionByte.
func Seal(plaintext []byte, nonce *[NonceSize]byte, peerPublic, secret *[KeySize]byte, versioned bool) []byte {
	shared := SharedKey(peerPublic, secret)
	defer clear(shared[:])

	var out []byte
	if versioned {
		out = []byte{VersionByte}
	}
	return box.SealAfterPrecomputation(out, plaintext, nonce, shared)
}

// SealShared is Seal with a precomputed key and no version byte.
func SealShared(plaintext []byte, nonce *[NonceSize]byte, shared *[KeySize]byte) []byte {
	return box.SealAfterPrecomputation(nil, plaintext, nonce, shared)
}
