package crypto

import "errors"

var (
	ErrKeyConversion  = errors.New("key conversion failed")
	ErrInvalidKey     = errors.New("invalid public key")
	ErrInvalidNonce   = errors.New("invalid nonce")
	ErrCiphertextSize = errors.New("ciphertext size out of range")
	ErrEncoding       = errors.New("invalid base58 encoding")
	ErrDecrypt        = errors.New("payload authentication failed")
	ErrMalformed      = errors.New("malformed payload")
	ErrMissingAddress = errors.New("payload has no account address")
)
