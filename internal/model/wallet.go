package model

import "time"

// ConnectResponse represents response for POST /wallet/connect
type ConnectResponse struct {
	AttemptID    string `json:"attemptId"`
	URL          string `json:"url"`
	RedirectLink string `json:"redirectLink"`
	QR           string `json:"QR"`
	DownloadURL  string `json:"downloadUrl"`

	// Identity is shown by the wallet when it asks to approve the connection.
	Identity AppIdentity `json:"identity"`
}

// AppIdentity names the dapp to the wallet.
type AppIdentity struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	Icon string `json:"icon"`
}

// SessionResponse represents the wallet session as seen by the app.
type SessionResponse struct {
	State         string    `json:"state"`
	Connected     bool      `json:"connected"`
	Address       string    `json:"address,omitempty"`
	AttemptID     string    `json:"attemptId,omitempty"`
	Error         string    `json:"error,omitempty"`
	LastSignature string    `json:"lastSignature,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CallbackResponse represents response for GET /wallet/callback
type CallbackResponse struct {
	Outcome string          `json:"outcome"`
	Session SessionResponse `json:"session"`
	Error   string          `json:"error,omitempty"`
}

// DisconnectResponse carries the wallet link that ends the wallet-side session.
type DisconnectResponse struct {
	URL string `json:"url,omitempty"`
}
