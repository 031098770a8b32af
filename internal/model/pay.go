package model

// TransferRequest represents request for POST /wallet/transfer.
// Empty fields fall back to a self transfer of the minimum amount.
type TransferRequest struct {
	ToAddress string `json:"toAddress" validate:"omitempty,solana_address"`
	Amount    string `json:"amount" validate:"omitempty,sol_amount"`
}

// Validate validates TransferRequest fields.
func (r *TransferRequest) Validate() error {
	return validateStruct(r)
}

// TransferResponse carries the wallet link that signs and sends the transfer.
type TransferResponse struct {
	URL      string `json:"url"`
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Lamports uint64 `json:"lamports"`
}
