package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/bitebudget-wallet/docs"
	"github.com/AlexZinkM/bitebudget-wallet/internal/handler"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
)

// Routes carries everything the router mounts.
type Routes struct {
	Wallet *handler.WalletHandler
	// Feed is nil when the backend is not configured.
	Feed *handler.FeedHandler
	// CallbackRoute is the app route the wallet redirects to, e.g. "wallet".
	CallbackRoute string
	Limiter       *RateLimiter
	Metrics       *Metrics
}

// SetupRouter sets up router with handlers
func SetupRouter(rt Routes) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		if rt.Metrics != nil {
			mux.Handle(pattern, rt.Metrics.Instrument(pattern, h))
			return
		}
		mux.Handle(pattern, h)
	}

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	if rt.Metrics != nil {
		mux.Handle("/metrics", rt.Metrics.Handler())
	}

	// Wallet endpoints
	connect := http.Handler(http.HandlerFunc(rt.Wallet.Connect))
	if rt.Limiter != nil {
		connect = rt.Limiter.Handler(connect)
	}
	handle("/wallet/connect", connect.ServeHTTP)
	handle("/wallet/callback", rt.Wallet.Callback)
	handle("/wallet/session", rt.Wallet.Session)
	handle("/wallet/disconnect", rt.Wallet.Disconnect)
	handle("/wallet/balance", rt.Wallet.GetBalance)
	handle("/wallet/transfer", rt.Wallet.Transfer)

	// Universal links forwarded to the server land on the callback routes directly.
	if route := phantom.NormalizeRoute(rt.CallbackRoute); route != "" {
		handle("/"+route, rt.Wallet.Callback)
		handle("/"+route+"/signed", rt.Wallet.Callback)
	}

	// Feed endpoints
	if rt.Feed != nil {
		handle("/feed", rt.Feed.Posts)
		handle("/feed/like", rt.Feed.Like)
		handle("/feed/summary", rt.Feed.Summary)
		handle("/feed/budget", rt.Feed.Budget)
		handle("/feed/friends", rt.Feed.Friends)
		handle("/feed/friends/answer", rt.Feed.AnswerFriend)
	}

	return mux
}
