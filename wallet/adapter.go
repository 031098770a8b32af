package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/AlexZinkM/bitebudget-wallet/internal/client"
	"github.com/AlexZinkM/bitebudget-wallet/internal/connect"
)

var ErrNoTransactions = errors.New("no transactions to sign")

// Adapter is the capability set the app needs from a wallet.
// Implementations are chosen at startup.
type Adapter interface {
	// Authorize starts a connection and returns the link that hands off to the wallet.
	Authorize(ctx context.Context) (*connect.Link, error)
	// SignAndSendTransactions returns one wallet link per unsigned transaction.
	SignAndSendTransactions(ctx context.Context, txs ...*solana.Transaction) ([]string, error)
	// Deauthorize forgets the session. The link is empty when there is nothing to tell the wallet.
	Deauthorize(ctx context.Context) (string, error)
}

// Receiver accepts deep links delivered back to the app.
type Receiver interface {
	OnIncomingURL(rawURL string) (connect.Outcome, error)
}

var _ Receiver = (*PhantomAdapter)(nil)

// PhantomAdapter talks to Phantom through universal links.
type PhantomAdapter struct {
	connector *connect.Connector
}

func NewPhantomAdapter(connector *connect.Connector) *PhantomAdapter {
	return &PhantomAdapter{connector: connector}
}

func (a *PhantomAdapter) Authorize(ctx context.Context) (*connect.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.connector.Begin()
}

func (a *PhantomAdapter) SignAndSendTransactions(ctx context.Context, txs ...*solana.Transaction) ([]string, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	links := make([]string, 0, len(txs))
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		encoded, err := client.EncodeUnsigned(tx)
		if err != nil {
			return nil, fmt.Errorf("failed to encode transaction %d: %w", i, err)
		}
		link, err := a.connector.SignAndSendURL(encoded)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func (a *PhantomAdapter) Deauthorize(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.connector.Disconnect()
}

func (a *PhantomAdapter) OnIncomingURL(rawURL string) (connect.Outcome, error) {
	return a.connector.OnIncomingURL(rawURL)
}
