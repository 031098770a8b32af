package phantom

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/AlexZinkM/bitebudget-wallet/internal/crypto"
)

var ErrSessionMismatch = errors.New("payload session does not match")

// Responder plays the wallet side of the deep-link protocol. It backs the
// simulator command and end-to-end tests.
type Responder struct {
	Keypair   crypto.EncryptionKeypair
	Session   string
	Versioned bool
}

func NewResponder(session string) (*Responder, error) {
	kp, err := crypto.GenerateEncryptionKeypair()
	if err != nil {
		return nil, err
	}
	return &Responder{Keypair: kp, Session: session}, nil
}

// ApproveConnect answers a connect link with an encrypted account address.
func (r *Responder) ApproveConnect(connectURL, address string) (string, error) {
	q, err := linkQuery(connectURL)
	if err != nil {
		return "", err
	}
	dappPublic, err := crypto.DecodeKey(q.Get(paramDappKey))
	if err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(crypto.ConnectPayload{PublicKey: address, Session: r.Session})
	if err != nil {
		return "", err
	}
	nonce, ciphertext, err := r.seal(plaintext, &dappPublic)
	if err != nil {
		return "", err
	}
	return BuildCallbackURL(q.Get(paramRedirectLink), r.Keypair.Public, nonce, ciphertext)
}

// RejectConnect answers a link the way the wallet does when the user declines.
func (r *Responder) RejectConnect(connectURL string) (string, error) {
	q, err := linkQuery(connectURL)
	if err != nil {
		return "", err
	}
	return BuildErrorCallbackURL(q.Get(paramRedirectLink), UserRejectedCode, "User rejected the request.")
}

// ApproveSignAndSend opens a signAndSendTransaction link and answers it with signature.
func (r *Responder) ApproveSignAndSend(link, signature string) (string, *TransactionPayload, error) {
	q, err := linkQuery(link)
	if err != nil {
		return "", nil, err
	}
	dappPublic, err := crypto.DecodeKey(q.Get(paramDappKey))
	if err != nil {
		return "", nil, err
	}
	nonce, err := crypto.DecodeNonce(q.Get(paramNonce))
	if err != nil {
		return "", nil, err
	}
	ciphertext, err := crypto.DecodeBase58(q.Get(paramPayload), 0)
	if err != nil {
		return "", nil, err
	}

	shared := crypto.SharedKey(&dappPublic, &r.Keypair.Secret)
	defer clear(shared[:])

	plaintext, err := crypto.OpenShared(ciphertext, &nonce, shared)
	if err != nil {
		return "", nil, err
	}
	var tx TransactionPayload
	if err := json.Unmarshal(plaintext, &tx); err != nil {
		return "", nil, fmt.Errorf("%w: %v", crypto.ErrMalformed, err)
	}
	if tx.Session != r.Session {
		return "", nil, ErrSessionMismatch
	}

	body, err := json.Marshal(crypto.SignedPayload{Signature: signature})
	if err != nil {
		return "", nil, err
	}
	replyNonce, reply, err := r.seal(body, &dappPublic)
	if err != nil {
		return "", nil, err
	}

	u, err := url.Parse(q.Get(paramRedirectLink))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse redirect link: %w", err)
	}
	rq := u.Query()
	rq.Set(paramNonce, crypto.EncodeBase58(replyNonce[:]))
	rq.Set(paramData, crypto.EncodeBase58(reply))
	u.RawQuery = rq.Encode()
	return u.String(), &tx, nil
}

// seal encrypts to the dapp. Unversioned output never starts with the
// version byte so the receiver does not strip a ciphertext byte.
func (r *Responder) seal(plaintext []byte, dappPublic *[crypto.KeySize]byte) ([crypto.NonceSize]byte, []byte, error) {
	for {
		nonce, err := crypto.NewNonce()
		if err != nil {
			return nonce, nil, err
		}
		ct := crypto.Seal(plaintext, &nonce, dappPublic, &r.Keypair.Secret, r.Versioned)
		if r.Versioned || ct[0] != crypto.VersionByte {
			return nonce, ct, nil
		}
	}
}

func linkQuery(link string) (url.Values, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, ErrUnparsableURL
	}
	q := u.Query()
	if q.Get(paramRedirectLink) == "" {
		return nil, fmt.Errorf("%w: redirect_link", ErrMissingParams)
	}
	return q, nil
}
