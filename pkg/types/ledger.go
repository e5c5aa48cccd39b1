package types

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInitialBalance is the hbar amount funding a new account when the caller omits it
var DefaultInitialBalance = decimal.NewFromInt(100)

// DefaultTopicMemo is used when a topic is created without a memo
const DefaultTopicMemo = "Topic SolidAvenir"

// AccountCredential is handed to the caller after account creation.
// The gateway keeps no copy of it.
type AccountCredential struct {
	AccountID  string `json:"accountId"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// Receipt is the normalized finalization record of a submitted transaction
type Receipt struct {
	TransactionID  string    `json:"transactionId"`
	Status         string    `json:"status"`
	PayerAccountID string    `json:"payerAccountId"`
	ValidStart     time.Time `json:"validStart"`
	AccountID      string    `json:"accountId,omitempty"`
	TopicID        string    `json:"topicId,omitempty"`
}

// AccountCreation is the result of a finalized account-create transaction
type AccountCreation struct {
	Credential AccountCredential
	Receipt    Receipt
}

// Balance is an account balance in both display and fractional units
type Balance struct {
	Hbars    string `json:"hbars"`
	Tinybars int64  `json:"tinybars"`
}

// CreateAccountRequest is the body of POST /create-wallet
type CreateAccountRequest struct {
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
}

// TransferRequest moves Amount hbar from FromAccountID to ToAccountID.
// The sender's key is supplied on every call.
type TransferRequest struct {
	FromAccountID  string          `json:"fromAccountId" validate:"required,entityid"`
	FromPrivateKey string          `json:"fromPrivateKey" validate:"required"`
	ToAccountID    string          `json:"toAccountId" validate:"required,entityid"`
	Amount         decimal.Decimal `json:"amount"`
}

// CreateTopicRequest is the body of POST /create-topic
type CreateTopicRequest struct {
	Memo *string `json:"memo,omitempty"`
}

// TopicMessage is the body of POST /send-message
type TopicMessage struct {
	TopicID string          `json:"topicId"`
	Message json.RawMessage `json:"message"`
}

// OperationResult is the uniform response envelope
type OperationResult struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Status        string          `json:"status,omitempty"`
	HashscanURL   string          `json:"hashscanUrl,omitempty"`
	AccountID     string          `json:"accountId,omitempty"`
	PrivateKey    string          `json:"privateKey,omitempty"`
	PublicKey     string          `json:"publicKey,omitempty"`
	Balance       string          `json:"balance,omitempty"`
	TopicID       string          `json:"topicId,omitempty"`
	MirrorURL     string          `json:"mirrorUrl,omitempty"`
	MirrorData    json.RawMessage `json:"mirrorData,omitempty"`
}

// MessageResult is the envelope of POST /send-message.
// mirrorUrl and mirrorData are always serialized, mirrorData as null when the lookup did not succeed.
type MessageResult struct {
	Success       bool            `json:"success"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transactionId"`
	HashscanURL   string          `json:"hashscanUrl"`
	MirrorURL     string          `json:"mirrorUrl"`
	MirrorData    json.RawMessage `json:"mirrorData"`
}

// AccountStatus reports whether an account exists on the ledger
type AccountStatus struct {
	Success   bool   `json:"success"`
	AccountID string `json:"accountId"`
	Exists    bool   `json:"exists"`
	Balance   string `json:"balance,omitempty"`
}

// FailureResult builds the failure envelope for err
func FailureResult(err error) *OperationResult {
	return &OperationResult{Success: false, Error: err.Error()}
}
