package connect

import (
	"encoding/base64"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bitebudget-wallet/internal/config"
	"github.com/AlexZinkM/bitebudget-wallet/internal/crypto"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
)

const address = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

type countingObserver struct {
	mu     sync.Mutex
	counts map[Outcome]int
}

func (o *countingObserver) ObserveAttempt(out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[Outcome]int)
	}
	o.counts[out]++
}

func (o *countingObserver) count(out Outcome) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[out]
}

func testSettings() Settings {
	return Settings{
		AppURL:  "https://bitebudget.app",
		Cluster: phantom.Devnet,
		Env:     config.Environment{Scheme: "app", Production: true},
		Route:   "wallet",
	}
}

func newConnector(t *testing.T, opts ...Option) (*Connector, *session.Store) {
	t.Helper()
	store := session.NewStore()
	c, err := NewConnector(testSettings(), store, opts...)
	require.NoError(t, err)
	return c, store
}

func newResponder(t *testing.T) *phantom.Responder {
	t.Helper()
	r, err := phantom.NewResponder("wallet-session")
	require.NoError(t, err)
	return r
}

func TestConnector_EndToEnd(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	require.NoError(t, err)
	var nonce [crypto.NonceSize]byte
	copy(nonce[:], raw)

	c, store := newConnector(t)
	c.arena.keygen = func() (crypto.EncryptionKeypair, error) {
		return crypto.ConvertToEncryptionKeypair(fixedSigningKeypair())
	}

	link, err := c.Begin()
	require.NoError(t, err)
	assert.Equal(t, session.AwaitingCallback, store.State())

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	q := u.Query()
	for _, key := range []string{"app_url", "dapp_encryption_public_key", "redirect_link", "nonce", "cluster"} {
		assert.Len(t, q[key], 1, key)
	}
	assert.Equal(t, "app://wallet?attempt="+link.AttemptID, q.Get("redirect_link"))
	assert.Contains(t, link.URL, "redirect_link=app%3A%2F%2Fwallet%3Fattempt%3D"+link.AttemptID)

	// Fixed nonce as a builder input.
	fixed, err := phantom.BuildConnectURL(phantom.ConnectParams{
		AppURL:                  "https://bitebudget.app",
		DappEncryptionPublicKey: mustKey(t, q.Get("dapp_encryption_public_key")),
		Nonce:                   nonce,
		RedirectLink:            "app://wallet",
		Cluster:                 phantom.Devnet,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(fixed, "nonce=111111111111111111111111"))
	assert.Equal(t, 1, strings.Count(fixed, "redirect_link=app%3A%2F%2Fwallet"))

	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)

	outcome, err := c.OnIncomingURL(callback)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConnected, outcome)

	snap := store.Snapshot()
	assert.True(t, snap.Connected)
	assert.Equal(t, address, snap.Address)
	assert.Equal(t, 0, c.Pending())
}

func TestConnector_RouteMismatchIsNoop(t *testing.T) {
	c, store := newConnector(t)
	_, err := c.Begin()
	require.NoError(t, err)
	before := store.Snapshot()

	for _, raw := range []string{
		"app://settings?data=a&nonce=b&phantom_encryption_public_key=c",
		"exp://127.0.0.1:8081/--/profile",
		"not a url",
		"",
	} {
		outcome, err := c.OnIncomingURL(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, OutcomeIgnored, outcome, raw)
	}

	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, 1, c.Pending())
}

func TestConnector_MissingParams(t *testing.T) {
	for _, drop := range []string{"data", "nonce", "phantom_encryption_public_key"} {
		t.Run(drop, func(t *testing.T) {
			c, store := newConnector(t)
			link, err := c.Begin()
			require.NoError(t, err)

			callback, err := newResponder(t).ApproveConnect(link.URL, address)
			require.NoError(t, err)
			u, err := url.Parse(callback)
			require.NoError(t, err)
			q := u.Query()
			q.Del(drop)
			u.RawQuery = q.Encode()

			outcome, err := c.OnIncomingURL(u.String())
			assert.ErrorIs(t, err, phantom.ErrMissingParams)
			assert.Equal(t, OutcomeFailed, outcome)

			snap := store.Snapshot()
			assert.Equal(t, session.Disconnected, snap.State)
			assert.False(t, snap.Connected)
			assert.Equal(t, MsgConnectFailed, snap.Error)
			assert.Equal(t, 0, c.Pending())
		})
	}
}

func TestConnector_TamperedCallback(t *testing.T) {
	c, store := newConnector(t)
	link, err := c.Begin()
	require.NoError(t, err)

	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)

	// Another wallet key decrypts nothing.
	other := newResponder(t)
	u, err := url.Parse(callback)
	require.NoError(t, err)
	q := u.Query()
	q.Set("phantom_encryption_public_key", crypto.EncodeBase58(other.Keypair.Public[:]))
	u.RawQuery = q.Encode()

	outcome, err := c.OnIncomingURL(u.String())
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, MsgConnectFailed, store.Snapshot().Error)
	assert.False(t, store.IsConnected())
}

func TestConnector_LatestAttemptWins(t *testing.T) {
	obs := &countingObserver{}
	c, store := newConnector(t, WithObserver(obs))

	first, err := c.Begin()
	require.NoError(t, err)
	second, err := c.Begin()
	require.NoError(t, err)
	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.Equal(t, 1, c.Pending())

	// A cold-start URL for the superseded attempt arrives first.
	stale, err := newResponder(t).ApproveConnect(first.URL, address)
	require.NoError(t, err)
	outcome, err := c.OnIncomingURL(stale)
	assert.ErrorIs(t, err, ErrUnknownAttempt)
	assert.Equal(t, OutcomeStale, outcome)
	assert.Equal(t, session.AwaitingCallback, store.State())
	assert.Equal(t, second.AttemptID, store.Snapshot().AttemptID)
	assert.Equal(t, 1, c.Pending())

	fresh, err := newResponder(t).ApproveConnect(second.URL, address)
	require.NoError(t, err)
	outcome, err = c.OnIncomingURL(fresh)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConnected, outcome)
	assert.Equal(t, address, store.Snapshot().Address)

	assert.Equal(t, 2, obs.count(OutcomeStarted))
	assert.Equal(t, 1, obs.count(OutcomeStale))
	assert.Equal(t, 1, obs.count(OutcomeConnected))
	assert.Equal(t, 0, obs.count(OutcomeFailed))
}

func TestConnector_StaleCallbacksKeepConnectedSession(t *testing.T) {
	c, store := newConnector(t)
	link, err := c.Begin()
	require.NoError(t, err)
	wallet := newResponder(t)
	callback, err := wallet.ApproveConnect(link.URL, address)
	require.NoError(t, err)

	_, err = c.OnIncomingURL(callback)
	require.NoError(t, err)
	require.True(t, store.IsConnected())

	for _, raw := range []string{
		callback,
		"app://wallet",
		"app://wallet?attempt=" + link.AttemptID,
		"app://wallet?attempt=nope&data=a&nonce=b&phantom_encryption_public_key=c",
		"app://wallet?errorCode=4001&errorMessage=nope",
	} {
		outcome, err := c.OnIncomingURL(raw)
		assert.Error(t, err, raw)
		assert.Equal(t, OutcomeStale, outcome, raw)

		snap := store.Snapshot()
		assert.True(t, snap.Connected, raw)
		assert.Equal(t, address, snap.Address, raw)
		assert.Empty(t, snap.Error, raw)
	}

	// The encrypted channel survived as well.
	_, err = c.SignAndSendURL("unsigned-tx")
	assert.NoError(t, err)
}

func TestConnector_StaleCallbackKeepsPendingAttempt(t *testing.T) {
	c, store := newConnector(t)
	link, err := c.Begin()
	require.NoError(t, err)

	outcome, err := c.OnIncomingURL("app://wallet?nonce=abc")
	assert.ErrorIs(t, err, phantom.ErrMissingParams)
	assert.Equal(t, OutcomeStale, outcome)
	assert.Equal(t, session.AwaitingCallback, store.State())
	assert.Equal(t, 1, c.Pending())

	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)
	outcome, err = c.OnIncomingURL(callback)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConnected, outcome)
}

func TestConnector_FailedReconnectKeepsSession(t *testing.T) {
	c, store := newConnector(t)
	link, err := c.Begin()
	require.NoError(t, err)
	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)
	_, err = c.OnIncomingURL(callback)
	require.NoError(t, err)

	again, err := c.Begin()
	require.NoError(t, err)
	reject, err := newResponder(t).RejectConnect(again.URL)
	require.NoError(t, err)

	outcome, err := c.OnIncomingURL(reject)
	assert.True(t, phantom.IsWalletError(err))
	assert.Equal(t, OutcomeRejected, outcome)
	assert.True(t, store.IsConnected())
	assert.Equal(t, 0, c.Pending())
}

func TestConnector_Rejected(t *testing.T) {
	c, store := newConnector(t)
	link, err := c.Begin()
	require.NoError(t, err)

	callback, err := newResponder(t).RejectConnect(link.URL)
	require.NoError(t, err)

	outcome, err := c.OnIncomingURL(callback)
	assert.True(t, phantom.IsWalletError(err))
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, MsgRejected, store.Snapshot().Error)
}

func TestConnector_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c, store := newConnector(t, WithAttemptTTL(time.Minute), WithClock(clock))

	link, err := c.Begin()
	require.NoError(t, err)
	assert.Equal(t, 0, c.ExpirePending())

	now = now.Add(2 * time.Minute)
	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)

	assert.Equal(t, 1, c.ExpirePending())
	snap := store.Snapshot()
	assert.Equal(t, session.Disconnected, snap.State)
	assert.Equal(t, MsgExpired, snap.Error)

	_, err = c.OnIncomingURL(callback)
	assert.ErrorIs(t, err, ErrUnknownAttempt)
}

func TestConnector_ExpiredOnTake(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, _ := newConnector(t, WithAttemptTTL(time.Minute), WithClock(func() time.Time { return now }))

	link, err := c.Begin()
	require.NoError(t, err)
	callback, err := newResponder(t).ApproveConnect(link.URL, address)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = c.OnIncomingURL(callback)
	assert.ErrorIs(t, err, ErrAttemptExpired)
}

func TestConnector_SignAndSend(t *testing.T) {
	c, store := newConnector(t)

	_, err := c.SignAndSendURL("tx")
	assert.ErrorIs(t, err, session.ErrNotConnected)

	link, err := c.Begin()
	require.NoError(t, err)
	wallet := newResponder(t)
	callback, err := wallet.ApproveConnect(link.URL, address)
	require.NoError(t, err)
	_, err = c.OnIncomingURL(callback)
	require.NoError(t, err)

	signLink, err := c.SignAndSendURL("unsigned-tx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signLink, "https://phantom.app/ul/v1/signAndSendTransaction?"))

	reply, tx, err := wallet.ApproveSignAndSend(signLink, "5sig")
	require.NoError(t, err)
	assert.Equal(t, "unsigned-tx", tx.Transaction)
	assert.Equal(t, "wallet-session", tx.Session)

	outcome, err := c.OnIncomingURL(reply)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSigned, outcome)
	assert.Equal(t, "5sig", store.Snapshot().LastSignature)
	assert.True(t, store.IsConnected())
}

func TestConnector_Disconnect(t *testing.T) {
	c, store := newConnector(t)

	link, err := c.Disconnect()
	require.NoError(t, err)
	assert.Empty(t, link)

	begin, err := c.Begin()
	require.NoError(t, err)
	callback, err := newResponder(t).ApproveConnect(begin.URL, address)
	require.NoError(t, err)
	_, err = c.OnIncomingURL(callback)
	require.NoError(t, err)

	link, err = c.Disconnect()
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/ul/v1/disconnect", u.Path)
	assert.Equal(t, "app://wallet/disconnected", u.Query().Get("redirect_link"))
	assert.NotEmpty(t, u.Query().Get("payload"))

	assert.Equal(t, session.Disconnected, store.State())
	_, err = c.SignAndSendURL("tx")
	assert.ErrorIs(t, err, session.ErrNotConnected)
}

func TestNewConnector_Invalid(t *testing.T) {
	s := testSettings()
	s.Cluster = "localnet"
	_, err := NewConnector(s, session.NewStore())
	assert.ErrorIs(t, err, phantom.ErrInvalidCluster)

	s = testSettings()
	s.Route = "/"
	_, err = NewConnector(s, session.NewStore())
	assert.Error(t, err)
}

func mustKey(t *testing.T, s string) [crypto.KeySize]byte {
	t.Helper()
	k, err := crypto.DecodeKey(s)
	require.NoError(t, err)
	return k
}
