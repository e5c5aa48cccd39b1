package interfaces

import (
	"context"
	"time"

	"github.com/dmaiga/solidavenir/pkg/types"
	"github.com/shopspring/decimal"
)

// LedgerClient defines the operations the gateway delegates to the ledger network.
// Every mutating call returns only after the transaction receipt is final.
type LedgerClient interface {
	// Accounts
	CreateAccount(ctx context.Context, initialBalance decimal.Decimal) (*types.AccountCreation, error)
	GetBalance(ctx context.Context, accountID string) (*types.Balance, error)

	// Transfers
	Transfer(ctx context.Context, req *types.TransferRequest) (*types.Receipt, error)

	// Consensus service
	CreateTopic(ctx context.Context, memo string) (*types.Receipt, error)
	SubmitTopicMessage(ctx context.Context, topicID string, message []byte) (*types.Receipt, error)

	// Identity of the client handle
	OperatorAccountID() string
	Network() string

	Close() error
}

// TransactionKey identifies a finalized transaction on the mirror service
type TransactionKey struct {
	PayerAccountID string
	ValidStart     time.Time
}

// MirrorLookup defines the best-effort read against the mirror service
type MirrorLookup interface {
	TransactionURL(key TransactionKey) string
	LookupTransaction(ctx context.Context, key TransactionKey) *types.MirrorResult
}
