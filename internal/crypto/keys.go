package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/curve25519"
)

const KeySize = 32

// SigningKeypair is an Ed25519 keypair in Solana's 64-byte private key form.
type SigningKeypair struct {
	Private solana.PrivateKey
}

// Public returns the Ed25519 public key.
func (k SigningKeypair) Public() solana.PublicKey {
	return k.Private.PublicKey()
}

// Wipe zeroes the private key.
func (k SigningKeypair) Wipe() {
	clear(k.Private)
}

// EncryptionKeypair is an X25519 keypair usable with box.
type EncryptionKeypair struct {
	Public [KeySize]byte
	Secret [KeySize]byte
}

// Wipe zeroes the secret key.
func (k *EncryptionKeypair) Wipe() {
	clear(k.Secret[:])
}

// GenerateKeypair creates a fresh Ed25519 keypair from crypto/rand.
func GenerateKeypair() (SigningKeypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return SigningKeypair{}, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return SigningKeypair{Private: priv}, nil
}

// ConvertToEncryptionKeypair maps an Ed25519 keypair onto Curve25519.
// The result is deterministic for a given keypair.
func ConvertToEncryptionKeypair(k SigningKeypair) (EncryptionKeypair, error) {
	var out EncryptionKeypair

	pub, err := ConvertPublicKey(k.Public().Bytes())
	if err != nil {
		return out, err
	}
	secret, err := ConvertSecretKey(k.Private)
	if err != nil {
		return out, err
	}

	// The two halves must describe the same keypair.
	derived, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		clear(secret[:])
		return out, fmt.Errorf("%w: %v", ErrKeyConversion, err)
	}
	if subtle.ConstantTimeCompare(derived, pub[:]) != 1 {
		clear(secret[:])
		return out, fmt.Errorf("%w: public and secret keys disagree", ErrKeyConversion)
	}

	out.Public = pub
	out.Secret = secret
	return out, nil
}

// GenerateEncryptionKeypair generates a signing keypair, converts it and wipes the signing half.
func GenerateEncryptionKeypair() (EncryptionKeypair, error) {
	signing, err := GenerateKeypair()
	if err != nil {
		return EncryptionKeypair{}, err
	}
	defer signing.Wipe()
	return ConvertToEncryptionKeypair(signing)
}

// ConvertPublicKey returns the Montgomery u-coordinate of an Ed25519 public key.
func ConvertPublicKey(pub []byte) ([KeySize]byte, error) {
	var out [KeySize]byte
	if len(pub) != ed25519.PublicKeySize {
		return out, fmt.Errorf("%w: public key must be %d bytes", ErrKeyConversion, ed25519.PublicKeySize)
	}

	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return out, fmt.Errorf("%w: not a curve point", ErrKeyConversion)
	}
	if new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1 {
		return out, fmt.Errorf("%w: low order point", ErrKeyConversion)
	}

	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// ConvertSecretKey derives the X25519 scalar from an Ed25519 private key.
func ConvertSecretKey(priv []byte) ([KeySize]byte, error) {
	var out [KeySize]byte
	if len(priv) != ed25519.PrivateKeySize {
		return out, fmt.Errorf("%w: private key must be %d bytes", ErrKeyConversion, ed25519.PrivateKeySize)
	}

	h := sha512.Sum512(priv[:ed25519.SeedSize])
	defer clear(h[:])
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	copy(out[:], h[:KeySize])
	return out, nil
}
