package crypto

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// maxEncodedLen bounds base58 input before decoding (decoding is quadratic).
const maxEncodedLen = MaxCiphertextSize*138/100 + 2

// ConnectPayload is the decrypted body of a connect callback.
type ConnectPayload struct {
	PublicKey string `json:"public_key"`
	Session   string `json:"session"`
}

// SignedPayload is the decrypted body of a sign-and-send callback.
type SignedPayload struct {
	Signature string `json:"signature"`
}

// DecodeBase58 decodes s and checks its length when size > 0.
func DecodeBase58(s string, size int) ([]byte, error) {
	if s == "" || len(s) > maxEncodedLen {
		return nil, ErrEncoding
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, ErrEncoding
	}
	if size > 0 && len(b) != size {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrEncoding, size, len(b))
	}
	return b, nil
}

// DecodeKey decodes a base58 32-byte key.
func DecodeKey(s string) ([KeySize]byte, error) {
	var out [KeySize]byte
	b, err := DecodeBase58(s, KeySize)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	copy(out[:], b)
	return out, nil
}

// DecodeNonce decodes a base58 24-byte nonce.
func DecodeNonce(s string) ([NonceSize]byte, error) {
	var out [NonceSize]byte
	b, err := DecodeBase58(s, NonceSize)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	copy(out[:], b)
	return out, nil
}

// EncodeBase58 is the wire encoding of keys, nonces and ciphertexts.
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecryptConnectPayload decodes the three wire fields of a connect callback and
// recovers the wallet's account address.
func DecryptConnectPayload(data, nonce, walletPublicKey string, dappSecret *[KeySize]byte) (*ConnectPayload, error) {
	n, err := DecodeNonce(nonce)
	if err != nil {
		return nil, err
	}
	pub, err := DecodeKey(walletPublicKey)
	if err != nil {
		return nil, err
	}
	ciphertext, err := DecodeBase58(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: data", err)
	}

	plaintext, err := Open(ciphertext, n[:], pub[:], dappSecret)
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)

	return parseConnectPayload(plaintext)
}

// DecryptSignedPayload opens a sign-and-send callback with an established shared key.
func DecryptSignedPayload(data, nonce string, shared *[KeySize]byte) (*SignedPayload, error) {
	n, err := DecodeNonce(nonce)
	if err != nil {
		return nil, err
	}
	ciphertext, err := DecodeBase58(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: data", err)
	}

	plaintext, err := OpenShared(ciphertext, &n, shared)
	if err != nil {
		return nil, err
	}

	var payload SignedPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Signature == "" {
		return nil, fmt.Errorf("%w: no signature", ErrMalformed)
	}
	return &payload, nil
}

func parseConnectPayload(plaintext []byte) (*ConnectPayload, error) {
	var payload ConnectPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.PublicKey == "" {
		return nil, ErrMissingAddress
	}
	if _, err := solana.PublicKeyFromBase58(payload.PublicKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingAddress, err)
	}
	return &payload, nil
}
