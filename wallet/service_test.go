package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/bitebudget-wallet/internal/client"
	"github.com/AlexZinkM/bitebudget-wallet/internal/config"
	"github.com/AlexZinkM/bitebudget-wallet/internal/connect"
	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
)

const (
	address   = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	recipient = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

type fakeChain struct {
	lamports uint64
	err      error
	builds   int
	lastTo   solana.PublicKey
	lastAmt  uint64
	lastTx   *solana.Transaction
}

func (f *fakeChain) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	return f.lamports, f.err
}

func (f *fakeChain) BuildTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.builds++
	f.lastTo = to
	f.lastAmt = lamports
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		solana.Hash{1},
		solana.TransactionPayer(from),
	)
	f.lastTx = tx
	return tx, err
}

type fakePrices struct {
	rate string
	err  error
}

func (f fakePrices) GetSOLtoUSDrate(ctx context.Context) (string, error) {
	return f.rate, f.err
}

type fixture struct {
	svc       *Service
	store     *session.Store
	chain     *fakeChain
	responder *phantom.Responder
	clock     *time.Time
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	store := session.NewStore()
	connector, err := connect.NewConnector(connect.Settings{
		AppURL:  "https://bitebudget.app",
		Cluster: phantom.Devnet,
		Env:     config.Environment{Scheme: "app", Production: true},
		Route:   "wallet",
	}, store)
	require.NoError(t, err)

	responder, err := phantom.NewResponder("wallet-session")
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: store, chain: &fakeChain{lamports: 2500000000}, responder: responder, clock: &now}
	opts = append([]ServiceOption{WithServiceClock(func() time.Time { return *f.clock })}, opts...)
	f.svc = NewService(NewPhantomAdapter(connector), store, f.chain, fakePrices{rate: "100"}, opts...)
	return f
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	resp, err := f.svc.Connect(context.Background())
	require.NoError(t, err)

	callback, err := f.responder.ApproveConnect(resp.URL, address)
	require.NoError(t, err)

	out, err := f.svc.HandleCallback(callback)
	require.NoError(t, err)
	require.Equal(t, string(connect.OutcomeConnected), out.Outcome)
}

func TestService_Connect(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Connect(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AttemptID)
	assert.Contains(t, resp.URL, "https://phantom.app/ul/v1/connect?")
	assert.Equal(t, "app://wallet?attempt="+resp.AttemptID, resp.RedirectLink)
	assert.Equal(t, phantom.DownloadURL, resp.DownloadURL)

	png, err := base64.StdEncoding.DecodeString(resp.QR)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	assert.Equal(t, "awaiting_callback", f.svc.Session().State)
}

func TestService_ConnectIdentity(t *testing.T) {
	id := model.AppIdentity{
		Name: "BiteBudget",
		URI:  "https://bitebudget.app",
		Icon: "https://bitebudget.app/icon.png",
	}
	f := newFixture(t, WithIdentity(id))

	resp, err := f.svc.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, resp.Identity)
}

func TestService_HandleCallback(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	s := f.svc.Session()
	assert.True(t, s.Connected)
	assert.Equal(t, address, s.Address)

	out, err := f.svc.HandleCallback("app://settings?x=1")
	require.NoError(t, err)
	assert.Equal(t, string(connect.OutcomeIgnored), out.Outcome)
	assert.True(t, out.Session.Connected)
}

func TestService_NotConnected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Balance(context.Background())
	assert.ErrorIs(t, err, session.ErrNotConnected)

	_, err = f.svc.Transfer(context.Background(), "", "")
	assert.ErrorIs(t, err, session.ErrNotConnected)
	assert.Zero(t, f.chain.builds)
}

func TestService_Balance(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	resp, err := f.svc.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, address, resp.Address)
	assert.Equal(t, "2.500000000", resp.SOL)
	assert.Equal(t, uint64(2500000000), resp.Lamports)
	assert.Equal(t, "100", resp.Rate)
	assert.Equal(t, "250.00", resp.USD)
}

func TestService_BalanceWithoutRate(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	f.svc.prices = fakePrices{err: errors.New("rate limited")}

	resp, err := f.svc.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.500000000", resp.SOL)
	assert.Empty(t, resp.Rate)
	assert.Empty(t, resp.USD)
}

func TestService_Transfer(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	resp, err := f.svc.Transfer(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, address, resp.From)
	assert.Equal(t, address, resp.To)
	assert.Equal(t, uint64(defaultTransferLamports), resp.Lamports)
	assert.Equal(t, "0.000001000", resp.Amount)

	callback, payload, err := f.responder.ApproveSignAndSend(resp.URL, "5sig")
	require.NoError(t, err)
	assert.Equal(t, "wallet-session", payload.Session)

	encoded, err := client.EncodeUnsigned(f.chain.lastTx)
	require.NoError(t, err)
	assert.Equal(t, encoded, payload.Transaction)
	assert.Equal(t, solana.MustPublicKeyFromBase58(address), f.chain.lastTx.Message.AccountKeys[0])

	out, err := f.svc.HandleCallback(callback)
	require.NoError(t, err)
	assert.Equal(t, string(connect.OutcomeSigned), out.Outcome)
	assert.Equal(t, "5sig", out.Session.LastSignature)
}

func TestService_TransferToRecipient(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	resp, err := f.svc.Transfer(context.Background(), recipient, "0.5")
	require.NoError(t, err)
	assert.Equal(t, recipient, resp.To)
	assert.Equal(t, uint64(500000000), f.chain.lastAmt)
	assert.Equal(t, solana.MustPublicKeyFromBase58(recipient), f.chain.lastTo)
}

func TestService_TransferInvalidInput(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	_, err := f.svc.Transfer(context.Background(), "bogus", "")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = f.svc.Transfer(context.Background(), "", "abc")
	assert.ErrorContains(t, err, "invalid amount")

	_, err = f.svc.Transfer(context.Background(), "", "0")
	assert.ErrorContains(t, err, "invalid amount")
	assert.Zero(t, f.chain.builds)
}

func TestService_TransferCooldown(t *testing.T) {
	f := newFixture(t, WithTransferCooldown(30*time.Second))
	f.connect(t)

	_, err := f.svc.Transfer(context.Background(), "", "")
	require.NoError(t, err)

	*f.clock = f.clock.Add(10 * time.Second)
	_, err = f.svc.Transfer(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, IsCooldownError(err))
	assert.EqualError(t, err, "cooldown active, please wait 20s")

	*f.clock = f.clock.Add(20 * time.Second)
	_, err = f.svc.Transfer(context.Background(), "", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.chain.builds)
}

func TestService_TransferBuildFailureKeepsCooldownOpen(t *testing.T) {
	f := newFixture(t, WithTransferCooldown(time.Minute))
	f.connect(t)
	f.chain.err = errors.New("rpc down")

	_, err := f.svc.Transfer(context.Background(), "", "")
	assert.ErrorContains(t, err, "failed to build transaction")

	f.chain.err = nil
	_, err = f.svc.Transfer(context.Background(), "", "")
	assert.NoError(t, err)
}

func TestService_Disconnect(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Disconnect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resp.URL)

	f.connect(t)
	resp, err = f.svc.Disconnect(context.Background())
	require.NoError(t, err)
	assert.Contains(t, resp.URL, "https://phantom.app/ul/v1/disconnect?")
	assert.False(t, f.svc.Session().Connected)
}

type authorizeOnly struct{}

func (authorizeOnly) Authorize(ctx context.Context) (*connect.Link, error) {
	return &connect.Link{AttemptID: "a", URL: "https://phantom.app/ul/v1/connect"}, nil
}

func (authorizeOnly) SignAndSendTransactions(ctx context.Context, txs ...*solana.Transaction) ([]string, error) {
	return nil, ErrNoTransactions
}

func (authorizeOnly) Deauthorize(ctx context.Context) (string, error) { return "", nil }

func TestService_CallbacksUnsupported(t *testing.T) {
	svc := NewService(authorizeOnly{}, session.NewStore(), &fakeChain{}, fakePrices{})
	_, err := svc.HandleCallback("app://wallet")
	assert.ErrorIs(t, err, ErrCallbacksUnsupported)
}

func TestPhantomAdapter_NoTransactions(t *testing.T) {
	a := NewPhantomAdapter(nil)
	_, err := a.SignAndSendTransactions(context.Background())
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestPhantomAdapter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewPhantomAdapter(nil)
	_, err := a.Authorize(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
