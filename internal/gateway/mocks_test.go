package gateway

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/types"
)

// MockLedgerClient is a mock implementation of interfaces.LedgerClient
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) CreateAccount(ctx context.Context, initialBalance decimal.Decimal) (*types.AccountCreation, error) {
	args := m.Called(ctx, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AccountCreation), args.Error(1)
}

func (m *MockLedgerClient) GetBalance(ctx context.Context, accountID string) (*types.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Balance), args.Error(1)
}

func (m *MockLedgerClient) Transfer(ctx context.Context, req *types.TransferRequest) (*types.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockLedgerClient) CreateTopic(ctx context.Context, memo string) (*types.Receipt, error) {
	args := m.Called(ctx, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockLedgerClient) SubmitTopicMessage(ctx context.Context, topicID string, message []byte) (*types.Receipt, error) {
	args := m.Called(ctx, topicID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockLedgerClient) OperatorAccountID() string {
	return "0.0.2"
}

func (m *MockLedgerClient) Network() string {
	return "testnet"
}

func (m *MockLedgerClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMirrorLookup is a mock implementation of interfaces.MirrorLookup
type MockMirrorLookup struct {
	mock.Mock
}

func (m *MockMirrorLookup) TransactionURL(key interfaces.TransactionKey) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockMirrorLookup) LookupTransaction(ctx context.Context, key interfaces.TransactionKey) *types.MirrorResult {
	args := m.Called(ctx, key)
	return args.Get(0).(*types.MirrorResult)
}
