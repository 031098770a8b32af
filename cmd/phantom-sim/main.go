// Answers a Phantom connect link the way the wallet would. Output: the callback URL.
// Usage: go run ./cmd/phantom-sim -address <base58> '<connect url>'
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
)

func main() {
	address := flag.String("address", "", "account address to approve with (random when empty)")
	sessionToken := flag.String("session", "sim-session", "wallet session token")
	versioned := flag.Bool("versioned", false, "prefix the ciphertext with the version byte")
	reject := flag.Bool("reject", false, "answer as if the user declined")
	deliver := flag.String("deliver", "", "service base URL to deliver the callback to, e.g. http://localhost:8080")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: phantom-sim [flags] <connect url>")
		os.Exit(2)
	}
	connectURL := flag.Arg(0)

	responder, err := phantom.NewResponder(*sessionToken)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer responder.Keypair.Wipe()
	responder.Versioned = *versioned

	var callback string
	if *reject {
		callback, err = responder.RejectConnect(connectURL)
	} else {
		if *address == "" {
			*address = solana.NewWallet().PublicKey().String()
		}
		callback, err = responder.ApproveConnect(connectURL, *address)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to answer link:", err)
		os.Exit(1)
	}

	if *deliver == "" {
		fmt.Print(callback)
		return
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Get(*deliver + "/wallet/callback?url=" + url.QueryEscape(callback))
	if err != nil {
		fmt.Fprintln(os.Stderr, "deliver failed:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s\n%s", resp.Status, body)
}
