package phantom

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/AlexZinkM/bitebudget-wallet/internal/crypto"
)

const (
	DefaultBaseURL = "https://phantom.app"
	DownloadURL    = "https://phantom.app/download"

	connectPath       = "/ul/v1/connect"
	signAndSendPath   = "/ul/v1/signAndSendTransaction"
	disconnectPath    = "/ul/v1/disconnect"
	paramAppURL       = "app_url"
	paramDappKey      = "dapp_encryption_public_key"
	paramRedirectLink = "redirect_link"
	paramNonce        = "nonce"
	paramCluster      = "cluster"
	paramPayload      = "payload"
	paramData         = "data"
	paramWalletKey    = "phantom_encryption_public_key"
	paramAttempt      = "attempt"
	paramErrorCode    = "errorCode"
	paramErrorMessage = "errorMessage"
)

var (
	ErrInvalidCluster = errors.New("invalid cluster")
	ErrEmptyRedirect  = errors.New("redirect link is required")
	ErrEmptyAppURL    = errors.New("app url is required")
	ErrEmptyPayload   = errors.New("payload is required")
)

type Cluster string

const (
	Devnet      Cluster = "devnet"
	Testnet     Cluster = "testnet"
	MainnetBeta Cluster = "mainnet-beta"
)

// ParseCluster accepts the wallet's cluster names and the "mainnet" alias.
func ParseCluster(s string) (Cluster, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "devnet":
		return Devnet, nil
	case "testnet":
		return Testnet, nil
	case "mainnet", "mainnet-beta":
		return MainnetBeta, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCluster, s)
}

// ConnectParams are the inputs of a connect universal link.
type ConnectParams struct {
	BaseURL                 string
	AppURL                  string
	DappEncryptionPublicKey [crypto.KeySize]byte
	Nonce                   [crypto.NonceSize]byte
	RedirectLink            string
	Cluster                 Cluster
}

// BuildConnectURL returns the connect universal link. It performs no I/O.
func BuildConnectURL(p ConnectParams) (string, error) {
	if p.AppURL == "" {
		return "", ErrEmptyAppURL
	}
	if p.RedirectLink == "" {
		return "", ErrEmptyRedirect
	}
	if _, err := ParseCluster(string(p.Cluster)); err != nil || p.Cluster == "mainnet" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCluster, p.Cluster)
	}

	q := url.Values{}
	q.Set(paramAppURL, p.AppURL)
	q.Set(paramDappKey, crypto.EncodeBase58(p.DappEncryptionPublicKey[:]))
	q.Set(paramRedirectLink, p.RedirectLink)
	q.Set(paramNonce, crypto.EncodeBase58(p.Nonce[:]))
	q.Set(paramCluster, string(p.Cluster))

	return baseURL(p.BaseURL) + connectPath + "?" + q.Encode(), nil
}

// PayloadParams are the inputs of links that carry an encrypted payload.
type PayloadParams struct {
	BaseURL                 string
	DappEncryptionPublicKey [crypto.KeySize]byte
	Nonce                   [crypto.NonceSize]byte
	RedirectLink            string
	Payload                 []byte
}

// TransactionPayload is encrypted into a signAndSendTransaction link.
type TransactionPayload struct {
	Transaction string `json:"transaction"`
	Session     string `json:"session"`
}

// DisconnectPayload is encrypted into a disconnect link.
type DisconnectPayload struct {
	Session string `json:"session"`
}

func BuildSignAndSendURL(p PayloadParams) (string, error) {
	return buildPayloadURL(signAndSendPath, p)
}

func BuildDisconnectURL(p PayloadParams) (string, error) {
	return buildPayloadURL(disconnectPath, p)
}

func buildPayloadURL(path string, p PayloadParams) (string, error) {
	if p.RedirectLink == "" {
		return "", ErrEmptyRedirect
	}
	if len(p.Payload) == 0 {
		return "", ErrEmptyPayload
	}

	q := url.Values{}
	q.Set(paramDappKey, crypto.EncodeBase58(p.DappEncryptionPublicKey[:]))
	q.Set(paramNonce, crypto.EncodeBase58(p.Nonce[:]))
	q.Set(paramRedirectLink, p.RedirectLink)
	q.Set(paramPayload, crypto.EncodeBase58(p.Payload))

	return baseURL(p.BaseURL) + path + "?" + q.Encode(), nil
}

// WithAttempt tags a redirect link with an attempt ID.
func WithAttempt(redirectLink, attemptID string) (string, error) {
	u, err := url.Parse(redirectLink)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect link: %w", err)
	}
	q := u.Query()
	q.Set(paramAttempt, attemptID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BuildCallbackURL returns what the wallet opens after approving a request.
func BuildCallbackURL(redirectLink string, walletPublicKey [crypto.KeySize]byte, nonce [crypto.NonceSize]byte, data []byte) (string, error) {
	u, err := url.Parse(redirectLink)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect link: %w", err)
	}
	q := u.Query()
	q.Set(paramWalletKey, crypto.EncodeBase58(walletPublicKey[:]))
	q.Set(paramNonce, crypto.EncodeBase58(nonce[:]))
	q.Set(paramData, crypto.EncodeBase58(data))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BuildErrorCallbackURL returns what the wallet opens after rejecting a request.
func BuildErrorCallbackURL(redirectLink, code, message string) (string, error) {
	u, err := url.Parse(redirectLink)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect link: %w", err)
	}
	q := u.Query()
	q.Set(paramErrorCode, code)
	q.Set(paramErrorMessage, message)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func baseURL(s string) string {
	if s == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(s, "/")
}
