package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
	"github.com/AlexZinkM/bitebudget-wallet/internal/phantom"
	"github.com/AlexZinkM/bitebudget-wallet/internal/session"
	"github.com/AlexZinkM/bitebudget-wallet/wallet"
)

// WalletHandler serves wallet connection and wallet actions
type WalletHandler struct {
	svc    *wallet.Service
	logger *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(svc *wallet.Service, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{svc: svc, logger: logger.Named("handler")}
}

// Connect handles POST /wallet/connect
// @Summary      Start wallet connection
// @Description  Starts a connect attempt and returns the Phantom link, a QR code of it and the wallet download link
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ConnectResponse
// @Failure      429  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	resp, err := h.svc.Connect(r.Context())
	if err != nil {
		h.logger.Error("failed to start connect", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to connect wallet", codeInternal)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Callback handles GET /wallet/callback and the callback routes themselves
// @Summary      Receive wallet redirect
// @Description  Accepts the URL the wallet redirected to, either in the url parameter or as the request itself
// @Tags         wallet
// @Produce      json
// @Param        url  query     string  false  "Redirect URL delivered to the app"
// @Success      200  {object}  model.CallbackResponse
// @Failure      400  {object}  model.CallbackResponse
// @Router       /wallet/callback [get]
func (h *WalletHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	raw := r.URL.Query().Get("url")
	if raw == "" {
		raw = requestURL(r)
	}

	resp, err := h.svc.HandleCallback(raw)
	if err != nil {
		if resp == nil {
			writeError(w, http.StatusInternalServerError, err.Error(), codeInternal)
			return
		}
		resp.Error = callbackError(err, resp.Session.Error)
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Session handles GET /wallet/session
// @Summary      Get wallet session
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /wallet/session [get]
func (h *WalletHandler) Session(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Session())
}

// Disconnect handles POST /wallet/disconnect
// @Summary      Disconnect wallet
// @Description  Forgets the wallet session. url is set when the wallet should be told as well
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.DisconnectResponse
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	resp, err := h.svc.Disconnect(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), codeInternal)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /wallet/balance
// @Summary      Get wallet balance (USD = SOL * rate)
// @Description  Gets SOL balance of the connected wallet with SOL/USD rate
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	balance, err := h.svc.Balance(r.Context())
	if err != nil {
		h.writeWalletError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// Transfer handles POST /wallet/transfer
// @Summary      Send SOL
// @Description  Builds a SOL transfer from the connected wallet and returns the link that asks Phantom to sign and send it
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  false  "Transfer data"
// @Success      200      {object}  model.TransferResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /wallet/transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req model.TransferRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
			return
		}
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
		return
	}

	resp, err := h.svc.Transfer(r.Context(), req.ToAddress, req.Amount)
	if err != nil {
		h.writeWalletError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) writeWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotConnected):
		writeError(w, http.StatusConflict, "connect your wallet first", codeNotConnected)
	case wallet.IsCooldownError(err):
		writeError(w, http.StatusTooManyRequests, err.Error(), codeCooldown)
	case errors.Is(err, wallet.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err.Error(), codeBadRequest)
	default:
		h.logger.Error("wallet request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error(), codeUpstream)
	}
}

// callbackError picks the message shown for a failed callback.
func callbackError(err error, sessionErr string) string {
	if sessionErr != "" {
		return sessionErr
	}
	var we *phantom.WalletError
	if errors.As(err, &we) {
		return "request was rejected in the wallet"
	}
	return "failed to process wallet callback"
}

// requestURL rebuilds the absolute URL a universal link arrived on.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
