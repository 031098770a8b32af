package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcFake answers JSON-RPC calls with canned results keyed by method.
func rpcFake(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, ok := results[req.Method]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testHash() solana.Hash {
	var h solana.Hash
	for i := range h {
		h[i] = byte(i + 1)
	}
	return h
}

func TestSolanaClient_GetBalance(t *testing.T) {
	srv := rpcFake(t, map[string]any{
		"getBalance": map[string]any{"context": map[string]any{"slot": 1}, "value": 2500000000},
	})
	c := NewSolanaClient(srv.URL)

	lamports, err := c.GetBalance(context.Background(), solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2500000000), lamports)
}

func TestSolanaClient_RPCError(t *testing.T) {
	srv := rpcFake(t, nil)
	c := NewSolanaClient(srv.URL)

	_, err := c.GetBalance(context.Background(), solana.SystemProgramID)
	assert.Error(t, err)
	_, err = c.LatestBlockhash(context.Background())
	assert.Error(t, err)
}

func TestSolanaClient_BuildTransfer(t *testing.T) {
	hash := testHash()
	srv := rpcFake(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   map[string]any{"blockhash": hash.String(), "lastValidBlockHeight": 100},
		},
	})
	c := NewSolanaClient(srv.URL)

	from := solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	tx, err := c.BuildTransfer(context.Background(), from, from, 1000)
	require.NoError(t, err)
	assert.Equal(t, hash, tx.Message.RecentBlockhash)
	assert.Equal(t, from, tx.Message.AccountKeys[0])
	assert.Equal(t, uint8(1), tx.Message.Header.NumRequiredSignatures)

	encoded, err := EncodeUnsigned(tx)
	require.NoError(t, err)

	raw, err := base58.Decode(encoded)
	require.NoError(t, err)
	msg, err := tx.Message.MarshalBinary()
	require.NoError(t, err)

	// One empty signature slot followed by the message.
	require.Len(t, raw, 1+64+len(msg))
	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, make([]byte, 64), raw[1:65])
	assert.Equal(t, msg, raw[65:])
}
