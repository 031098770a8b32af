package connect

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/internal/config"
	"github.com/AlexZinkM/bitebudget-wallet/internal/crypto"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
)

// User-facing reasons recorded on the session.
const (
	MsgConnectFailed = "failed to connect wallet"
	MsgRejected      = "wallet connection was rejected"
	MsgExpired       = "wallet did not respond in time"
)

var ErrNoChannel = errors.New("no encrypted channel with the wallet")

type Outcome string

const (
	OutcomeStarted   Outcome = "started"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeConnected Outcome = "connected"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
	OutcomeStale     Outcome = "stale"
	OutcomeSigned    Outcome = "signed"
)

// Observer is notified of every attempt outcome.
type Observer interface {
	ObserveAttempt(Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(Outcome) {}

// Settings describe how links are built and which routes are ours.
type Settings struct {
	BaseURL string
	AppURL  string
	Cluster phantom.Cluster
	Env     config.Environment
	Route   string
}

func (s Settings) connectRoute() string { return phantom.NormalizeRoute(s.Route) }

func (s Settings) signedRoute() string { return s.connectRoute() + "/signed" }

func (s Settings) disconnectedRoute() string { return s.connectRoute() + "/disconnected" }

// Link is a started connect attempt.
type Link struct {
	AttemptID    string `json:"attempt_id"`
	URL          string `json:"url"`
	RedirectLink string `json:"redirect_link"`
}

// channel is the encrypted context kept after a successful connect.
type channel struct {
	dappPublic [crypto.KeySize]byte
	shared     *[crypto.KeySize]byte
}

func (c *channel) wipe() {
	if c != nil && c.shared != nil {
		clear(c.shared[:])
	}
}

// Connector drives the connect handshake and receives every inbound deep link.
type Connector struct {
	settings Settings
	arena    *Arena
	store    *session.Store
	logger   *zap.Logger
	observer Observer

	mu      sync.Mutex
	channel *channel
}

type Option func(*Connector)

func WithLogger(l *zap.Logger) Option {
	return func(c *Connector) { c.logger = l.Named("connect") }
}

// WithAttemptTTL expires attempts the wallet never answered. Zero waits forever.
func WithAttemptTTL(ttl time.Duration) Option {
	return func(c *Connector) { c.arena.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(c *Connector) { c.arena.now = now }
}

func WithObserver(o Observer) Option {
	return func(c *Connector) { c.observer = o }
}

func NewConnector(settings Settings, store *session.Store, opts ...Option) (*Connector, error) {
	if _, err := phantom.ParseCluster(string(settings.Cluster)); err != nil {
		return nil, err
	}
	if settings.connectRoute() == "" {
		return nil, errors.New("callback route is required")
	}

	c := &Connector{
		settings: settings,
		arena:    NewArena(0),
		store:    store,
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Begin starts a connect attempt and returns the universal link to open.
func (c *Connector) Begin() (*Link, error) {
	ticket, err := c.arena.Open()
	if err != nil {
		c.logger.Error("failed to open connect attempt", zap.Error(err))
		c.observer.ObserveAttempt(OutcomeFailed)
		return nil, fmt.Errorf("failed to begin connect: %w", err)
	}

	redirect, err := phantom.WithAttempt(c.settings.Env.RedirectURL(c.settings.connectRoute()), ticket.ID)
	if err != nil {
		c.arena.Reset()
		return nil, err
	}

	link, err := phantom.BuildConnectURL(phantom.ConnectParams{
		BaseURL:                 c.settings.BaseURL,
		AppURL:                  c.settings.AppURL,
		DappEncryptionPublicKey: ticket.PublicKey,
		Nonce:                   ticket.Nonce,
		RedirectLink:            redirect,
		Cluster:                 c.settings.Cluster,
	})
	if err != nil {
		c.arena.Reset()
		return nil, fmt.Errorf("failed to build connect link: %w", err)
	}

	c.store.SetAwaiting(ticket.ID)
	c.observer.ObserveAttempt(OutcomeStarted)
	c.logger.Info("connect attempt started", zap.String("attempt", ticket.ID))

	return &Link{AttemptID: ticket.ID, URL: link, RedirectLink: redirect}, nil
}

// OnIncomingURL handles a deep link delivered at cold start or while running.
// URLs for other routes are ignored and leave the session untouched.
func (c *Connector) OnIncomingURL(rawURL string) (Outcome, error) {
	route, err := phantom.Route(rawURL)
	if err != nil {
		c.logger.Debug("ignoring unparsable url")
		return OutcomeIgnored, nil
	}

	switch route {
	case c.settings.connectRoute():
		return c.handleConnect(rawURL)
	case c.settings.signedRoute():
		return c.handleSigned(rawURL)
	default:
		c.logger.Debug("ignoring url for another route", zap.String("route", route))
		return OutcomeIgnored, nil
	}
}

func (c *Connector) handleConnect(rawURL string) (Outcome, error) {
	cb, parseErr := phantom.ParseCallback(rawURL, c.settings.connectRoute())
	if cb == nil {
		return c.stale("", parseErr)
	}

	att, err := c.arena.Take(cb.AttemptID)
	switch {
	case errors.Is(err, ErrAttemptExpired):
		c.logger.Info("connect callback after expiry", zap.String("attempt", cb.AttemptID))
		return c.fail(cb.AttemptID, OutcomeExpired, MsgExpired, err)
	case err != nil:
		if parseErr != nil {
			err = parseErr
		}
		return c.stale(cb.AttemptID, err)
	}
	defer c.arena.Release(att)

	if parseErr != nil {
		var we *phantom.WalletError
		if errors.As(parseErr, &we) {
			c.logger.Info("wallet rejected connect", zap.String("attempt", att.ID), zap.String("code", we.Code))
			return c.fail(att.ID, OutcomeRejected, MsgRejected, parseErr)
		}
		c.logger.Warn("invalid connect callback", zap.String("attempt", att.ID), zap.Error(parseErr))
		return c.fail(att.ID, OutcomeFailed, MsgConnectFailed, parseErr)
	}

	payload, err := crypto.DecryptConnectPayload(cb.Data, cb.Nonce, cb.WalletPublicKey, &att.Keypair.Secret)
	if err != nil {
		c.logger.Warn("failed to decrypt connect payload",
			zap.String("attempt", att.ID), zap.String("reason", reason(err)))
		return c.fail(att.ID, OutcomeFailed, MsgConnectFailed, err)
	}

	walletPublic, err := crypto.DecodeKey(cb.WalletPublicKey)
	if err != nil {
		return c.fail(att.ID, OutcomeFailed, MsgConnectFailed, err)
	}
	c.setChannel(&channel{
		dappPublic: att.Keypair.Public,
		shared:     crypto.SharedKey(&walletPublic, &att.Keypair.Secret),
	})

	c.store.SetConnected(payload.PublicKey, payload.Session)
	c.observer.ObserveAttempt(OutcomeConnected)
	c.logger.Info("wallet connected", zap.String("attempt", att.ID), zap.String("address", payload.PublicKey))
	return OutcomeConnected, nil
}

func (c *Connector) handleSigned(rawURL string) (Outcome, error) {
	cb, err := phantom.ParseSignedCallback(rawURL, c.settings.signedRoute())
	if err != nil {
		if phantom.IsWalletError(err) {
			c.logger.Info("wallet rejected transaction", zap.Error(err))
			c.observer.ObserveAttempt(OutcomeRejected)
			return OutcomeRejected, err
		}
		c.logger.Warn("invalid sign callback", zap.Error(err))
		return OutcomeFailed, err
	}

	c.mu.Lock()
	ch := c.channel
	var shared [crypto.KeySize]byte
	if ch != nil {
		shared = *ch.shared
	}
	c.mu.Unlock()
	defer clear(shared[:])

	if ch == nil {
		return OutcomeFailed, ErrNoChannel
	}

	payload, err := crypto.DecryptSignedPayload(cb.Data, cb.Nonce, &shared)
	if err != nil {
		c.logger.Warn("failed to decrypt sign payload", zap.String("reason", reason(err)))
		return OutcomeFailed, err
	}

	c.store.SetLastSignature(payload.Signature)
	c.observer.ObserveAttempt(OutcomeSigned)
	c.logger.Info("transaction signed", zap.String("signature", payload.Signature))
	return OutcomeSigned, nil
}

// SignAndSendURL encrypts an unsigned base58 transaction into a wallet link.
func (c *Connector) SignAndSendURL(transaction string) (string, error) {
	walletSession, ok := c.store.WalletSession()
	if !ok {
		return "", session.ErrNotConnected
	}
	params, err := c.seal(phantom.TransactionPayload{Transaction: transaction, Session: walletSession})
	if err != nil {
		return "", err
	}
	params.RedirectLink = c.settings.Env.RedirectURL(c.settings.signedRoute())
	return phantom.BuildSignAndSendURL(params)
}

// Disconnect clears the session and every pending attempt. When a wallet
// session existed, the returned link tells the wallet to drop it as well.
func (c *Connector) Disconnect() (string, error) {
	walletSession, ok := c.store.WalletSession()

	var link string
	if ok && walletSession != "" {
		params, err := c.seal(phantom.DisconnectPayload{Session: walletSession})
		if err == nil {
			params.RedirectLink = c.settings.Env.RedirectURL(c.settings.disconnectedRoute())
			link, err = phantom.BuildDisconnectURL(params)
		}
		if err != nil {
			c.logger.Warn("failed to build disconnect link", zap.Error(err))
		}
	}

	c.setChannel(nil)
	c.arena.Reset()
	c.store.Clear()
	c.logger.Info("wallet disconnected")
	return link, nil
}

// ExpirePending expires attempts older than the TTL and returns how many were dropped.
func (c *Connector) ExpirePending() int {
	ids := c.arena.Expire()
	for _, id := range ids {
		if c.store.FailAttempt(id, MsgExpired) {
			c.logger.Info("connect attempt expired", zap.String("attempt", id))
		}
		c.observer.ObserveAttempt(OutcomeExpired)
	}
	return len(ids)
}

// Pending reports how many attempts await a callback.
func (c *Connector) Pending() int {
	return c.arena.Pending()
}

func (c *Connector) seal(v any) (phantom.PayloadParams, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return phantom.PayloadParams{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	defer clear(plaintext)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return phantom.PayloadParams{}, ErrNoChannel
	}

	// Readers strip a leading version byte, so never emit one.
	for {
		nonce, err := crypto.NewNonce()
		if err != nil {
			return phantom.PayloadParams{}, err
		}
		ct := crypto.SealShared(plaintext, &nonce, c.channel.shared)
		if ct[0] == crypto.VersionByte {
			continue
		}
		return phantom.PayloadParams{
			BaseURL:                 c.settings.BaseURL,
			DappEncryptionPublicKey: c.channel.dappPublic,
			Nonce:                   nonce,
			Payload:                 ct,
		}, nil
	}
}

func (c *Connector) setChannel(ch *channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel.wipe()
	c.channel = ch
}

// fail ends the attempt named by attemptID. Other attempts, the encrypted
// channel and a connected session are left alone.
func (c *Connector) fail(attemptID string, outcome Outcome, msg string, err error) (Outcome, error) {
	c.store.FailAttempt(attemptID, msg)
	c.observer.ObserveAttempt(outcome)
	return outcome, err
}

// stale reports a connect callback that names no pending attempt. Nothing changes.
func (c *Connector) stale(attemptID string, err error) (Outcome, error) {
	if err == nil {
		err = ErrUnknownAttempt
	}
	c.logger.Warn("ignoring connect callback for no pending attempt",
		zap.String("attempt", attemptID), zap.Error(err))
	c.observer.ObserveAttempt(OutcomeStale)
	return OutcomeStale, err
}

// reason maps a decrypt error to a loggable class without payload detail.
func reason(err error) string {
	switch {
	case errors.Is(err, crypto.ErrDecrypt):
		return "authentication"
	case errors.Is(err, crypto.ErrMissingAddress):
		return "missing address"
	case errors.Is(err, crypto.ErrMalformed):
		return "malformed"
	case errors.Is(err, crypto.ErrInvalidNonce), errors.Is(err, crypto.ErrInvalidKey),
		errors.Is(err, crypto.ErrEncoding), errors.Is(err, crypto.ErrCiphertextSize):
		return "encoding"
	default:
		return "unknown"
	}
}
