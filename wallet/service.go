package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/internal/common"
	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
)

const (
	// defaultTransferLamports is the test transfer amount when none is given.
	defaultTransferLamports = 1000
)

var (
	ErrInvalidAddress       = errors.New("invalid Solana address")
	ErrCallbacksUnsupported = errors.New("wallet adapter does not receive callbacks")
)

// CooldownError is returned when a transfer is requested too soon after the previous one
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, please wait %v", e.Remaining.Round(time.Second))
}

// IsCooldownError checks if error is CooldownError
func IsCooldownError(err error) bool {
	var ce *CooldownError
	return errors.As(err, &ce)
}

// Chain is the part of the Solana RPC the wallet needs.
type Chain interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	BuildTransfer(ctx context.Context, from, to solana.PublicKey, lamports uint64) (*solana.Transaction, error)
}

// PriceSource quotes SOL in USD.
type PriceSource interface {
	GetSOLtoUSDrate(ctx context.Context) (string, error)
}

// Service implements wallet operations on top of the session.
type Service struct {
	adapter  Adapter
	store    *session.Store
	chain    Chain
	prices   PriceSource
	cooldown time.Duration
	identity model.AppIdentity
	logger   *zap.Logger
	now      func() time.Time

	transferMu   sync.Mutex
	lastTransfer time.Time
}

type ServiceOption func(*Service)

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l.Named("wallet") }
}

func WithTransferCooldown(d time.Duration) ServiceOption {
	return func(s *Service) { s.cooldown = d }
}

// WithIdentity sets the app identity returned with every connect link.
func WithIdentity(id model.AppIdentity) ServiceOption {
	return func(s *Service) { s.identity = id }
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(adapter Adapter, store *session.Store, chain Chain, prices PriceSource, opts ...ServiceOption) *Service {
	s := &Service{
		adapter: adapter,
		store:   store,
		chain:   chain,
		prices:  prices,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect starts a connection attempt.
// The QR code carries the same link for opening it on another device.
func (s *Service) Connect(ctx context.Context) (*model.ConnectResponse, error) {
	link, err := s.adapter.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	qr, err := generateQRCode(link.URL)
	if err != nil {
		// The link still works without the QR code.
		s.logger.Warn("failed to generate connect QR code", zap.Error(err))
	}

	return &model.ConnectResponse{
		AttemptID:    link.AttemptID,
		URL:          link.URL,
		RedirectLink: link.RedirectLink,
		QR:           qr,
		DownloadURL:  phantom.DownloadURL,
		Identity:     s.identity,
	}, nil
}

// HandleCallback feeds an inbound deep link to the adapter.
func (s *Service) HandleCallback(rawURL string) (*model.CallbackResponse, error) {
	receiver, ok := s.adapter.(Receiver)
	if !ok {
		return nil, ErrCallbacksUnsupported
	}
	outcome, err := receiver.OnIncomingURL(rawURL)
	return &model.CallbackResponse{
		Outcome: string(outcome),
		Session: s.Session(),
	}, err
}

// Session returns the current session.
func (s *Service) Session() model.SessionResponse {
	snap := s.store.Snapshot()
	return model.SessionResponse{
		State:         string(snap.State),
		Connected:     snap.Connected,
		Address:       snap.Address,
		AttemptID:     snap.AttemptID,
		Error:         snap.Error,
		LastSignature: snap.LastSignature,
		UpdatedAt:     snap.UpdatedAt,
	}
}

// Balance gets SOL balance of the connected wallet with the USD rate.
// A missing rate leaves Rate and USD empty.
func (s *Service) Balance(ctx context.Context) (*model.BalanceResponse, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return nil, err
	}
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	lamports, err := s.chain.GetBalance(ctx, owner)
	if err != nil {
		return nil, err
	}

	rate, err := s.prices.GetSOLtoUSDrate(ctx)
	if err != nil {
		s.logger.Warn("failed to get SOL rate", zap.Error(err))
		rate = ""
	}

	return &model.BalanceResponse{
		Address:  address,
		SOL:      common.LamportsToSOL(lamports),
		Lamports: lamports,
		Rate:     rate,
		USD:      common.SOLToUSD(lamports, rate),
	}, nil
}

// Transfer builds a SOL transfer from the connected wallet and returns the
// link that asks the wallet to sign and send it. Empty toAddress sends to self,
// empty amount sends the minimum test amount.
func (s *Service) Transfer(ctx context.Context, toAddress, amount string) (*model.TransferResponse, error) {
	address, err := s.store.RequireConnected()
	if err != nil {
		return nil, err
	}
	from, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	to := from
	if toAddress != "" {
		if to, err = solana.PublicKeyFromBase58(toAddress); err != nil {
			return nil, ErrInvalidAddress
		}
	}

	lamports := uint64(defaultTransferLamports)
	if amount != "" {
		if lamports, err = common.SOLToLamports(amount); err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		if lamports == 0 {
			return nil, errors.New("invalid amount: must be greater than zero")
		}
	}

	s.transferMu.Lock()
	defer s.transferMu.Unlock()

	if !s.lastTransfer.IsZero() && s.cooldown > 0 {
		if elapsed := s.now().Sub(s.lastTransfer); elapsed < s.cooldown {
			return nil, &CooldownError{Remaining: s.cooldown - elapsed}
		}
	}

	tx, err := s.chain.BuildTransfer(ctx, from, to, lamports)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	links, err := s.adapter.SignAndSendTransactions(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.lastTransfer = s.now()
	s.logger.Info("transfer handed to wallet",
		zap.String("from", from.String()), zap.String("to", to.String()), zap.Uint64("lamports", lamports))

	return &model.TransferResponse{
		URL:      links[0],
		From:     from.String(),
		To:       to.String(),
		Amount:   common.LamportsToSOL(lamports),
		Lamports: lamports,
	}, nil
}

// Disconnect forgets the wallet. URL is set when the wallet should be told too.
func (s *Service) Disconnect(ctx context.Context) (*model.DisconnectResponse, error) {
	link, err := s.adapter.Deauthorize(ctx)
	if err != nil {
		return nil, err
	}
	return &model.DisconnectResponse{URL: link}, nil
}
