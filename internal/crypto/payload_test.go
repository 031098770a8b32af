package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecryptConnectPayload_MissingAddress(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		wantErr   error
	}{
		{"empty key", `{"public_key":"","session":"s"}`, ErrMissingAddress},
		{"absent key", `{"session":"s"}`, ErrMissingAddress},
		{"not base58 address", `{"public_key":"not-an-address","session":"s"}`, ErrMissingAddress},
		{"not json", `public_key=abc`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPair(t)
			ct, nonce := sealFromWallet(t, p, []byte(tt.plaintext), true)

			_, err := DecryptConnectPayload(
				EncodeBase58(ct), EncodeBase58(nonce[:]), EncodeBase58(p.wallet.Public[:]), &p.dapp.Secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecryptConnectPayload_BadEncoding(t *testing.T) {
	p := newPair(t)
	ct, nonce := sealFromWallet(t, p, connectPlaintext(t, testAddress), true)
	data := EncodeBase58(ct)
	n := EncodeBase58(nonce[:])
	pub := EncodeBase58(p.wallet.Public[:])

	tests := []struct {
		name             string
		data, nonce, pub string
		wantErr          error
	}{
		{"nonce with 0", data, "0" + n[1:], pub, ErrInvalidNonce},
		{"empty nonce", data, "", pub, ErrInvalidNonce},
		{"key with l", data, n, "l" + pub[1:], ErrInvalidKey},
		{"short key", data, n, pub[:10], ErrInvalidKey},
		{"empty data", "", n, pub, ErrEncoding},
		{"huge data", strings.Repeat("z", maxEncodedLen+1), n, pub, ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptConnectPayload(tt.data, tt.nonce, tt.pub, &p.dapp.Secret)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecryptSignedPayload(t *testing.T) {
	p := newPair(t)
	shared := SharedKey(&p.wallet.Public, &p.dapp.Secret)

	nonce, err := NewNonce()
	require.NoError(t, err)
	ct := Seal([]byte(`{"signature":"5sig"}`), &nonce, &p.dapp.Public, &p.wallet.Secret, true)

	payload, err := DecryptSignedPayload(EncodeBase58(ct), EncodeBase58(nonce[:]), shared)
	require.NoError(t, err)
	assert.Equal(t, "5sig", payload.Signature)

	ct = Seal([]byte(`{}`), &nonce, &p.dapp.Public, &p.wallet.Secret, true)
	_, err = DecryptSignedPayload(EncodeBase58(ct), EncodeBase58(nonce[:]), shared)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeBase58(t *testing.T) {
	b, err := DecodeBase58("111111111111111111111111", NonceSize)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, NonceSize), b)

	_, err = DecodeBase58("1111", NonceSize)
	assert.ErrorIs(t, err, ErrEncoding)
}
