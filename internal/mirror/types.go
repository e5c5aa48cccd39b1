package mirror

// Transaction is one entry of the mirror node transactions listing
type Transaction struct {
	ChargedTxFee       int64      `json:"charged_tx_fee"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	EntityID           *string    `json:"entity_id"`
	MaxFee             string     `json:"max_fee"`
	MemoBase64         string     `json:"memo_base64"`
	Name               string     `json:"name"`
	Node               string     `json:"node"`
	Result             string     `json:"result"`
	TransactionID      string     `json:"transaction_id"`
	Transfers          []Transfer `json:"transfers"`
}

// Transfer is a single hbar leg reported by the mirror node, in tinybars
type Transfer struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

// TransactionsResponse is the body of GET /api/v1/transactions/{id}
type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Links        struct {
		Next string `json:"next"`
	} `json:"links"`
}
