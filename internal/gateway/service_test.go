package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/types"
)

var validStart = time.Unix(1700000000, 42)

func createTestService(t *testing.T) (*Service, *MockLedgerClient, *MockMirrorLookup) {
	t.Helper()
	ledgerClient := &MockLedgerClient{}
	mirror := &MockMirrorLookup{}
	svc := NewService(ledgerClient, mirror, logger.NewWithOutput("error", io.Discard))
	return svc, ledgerClient, mirror
}

func decimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

func testReceipt(txID string) *types.Receipt {
	return &types.Receipt{
		TransactionID:  txID,
		Status:         "SUCCESS",
		PayerAccountID: "0.0.2",
		ValidStart:     validStart,
	}
}

func TestService_CreateAccount(t *testing.T) {
	t.Run("defaults to 100 hbar", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		ledgerClient.On("CreateAccount", mock.Anything, decimalEq("100")).Return(&types.AccountCreation{
			Credential: types.AccountCredential{AccountID: "0.0.5001", PrivateKey: "priv", PublicKey: "pub"},
			Receipt:    *testReceipt("0.0.2@1700000000.000000042"),
		}, nil)

		result, err := svc.CreateAccount(context.Background(), &types.CreateAccountRequest{})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Regexp(t, `^\d+\.\d+\.\d+$`, result.AccountID)
		assert.Equal(t, "priv", result.PrivateKey)
		assert.Equal(t, "pub", result.PublicKey)
		assert.Equal(t, "SUCCESS", result.Status)
		assert.Equal(t, "https://hashscan.io/testnet/tx/0.0.2@1700000000.000000042", result.HashscanURL)
		ledgerClient.AssertExpectations(t)
	})

	t.Run("explicit balance", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		ledgerClient.On("CreateAccount", mock.Anything, decimalEq("2.5")).Return(&types.AccountCreation{
			Credential: types.AccountCredential{AccountID: "0.0.5002"},
			Receipt:    *testReceipt("0.0.2@1700000000.000000043"),
		}, nil)

		amount := decimal.RequireFromString("2.5")
		result, err := svc.CreateAccount(context.Background(), &types.CreateAccountRequest{InitialBalance: &amount})
		require.NoError(t, err)
		assert.Equal(t, "0.0.5002", result.AccountID)
	})

	t.Run("rejects negative balance", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		amount := decimal.NewFromInt(-1)

		_, err := svc.CreateAccount(context.Background(), &types.CreateAccountRequest{InitialBalance: &amount})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, types.HTTPStatus(err))
		ledgerClient.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})

	t.Run("ledger error is passed through verbatim", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		ledgerClient.On("CreateAccount", mock.Anything, mock.Anything).
			Return(nil, errors.New("exceptional precheck status INSUFFICIENT_PAYER_BALANCE"))

		_, err := svc.CreateAccount(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, "exceptional precheck status INSUFFICIENT_PAYER_BALANCE", err.Error())
		assert.Equal(t, http.StatusInternalServerError, types.HTTPStatus(err))
	})
}

func TestService_Transfer(t *testing.T) {
	valid := func() *types.TransferRequest {
		return &types.TransferRequest{
			FromAccountID:  "0.0.1001",
			FromPrivateKey: "302e020100300506032b657004220420aa",
			ToAccountID:    "0.0.1002",
			Amount:         decimal.NewFromInt(10),
		}
	}

	t.Run("success", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		req := valid()
		ledgerClient.On("Transfer", mock.Anything, req).Return(testReceipt("0.0.1001@1700000000.000000042"), nil)

		result, err := svc.Transfer(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "SUCCESS", result.Status)
		assert.Equal(t, "0.0.1001@1700000000.000000042", result.TransactionID)
		assert.Contains(t, result.HashscanURL, "/testnet/tx/")
	})

	invalid := map[string]func(r *types.TransferRequest){
		"missing sender":        func(r *types.TransferRequest) { r.FromAccountID = "" },
		"missing key":           func(r *types.TransferRequest) { r.FromPrivateKey = "" },
		"malformed receiver":    func(r *types.TransferRequest) { r.ToAccountID = "abc" },
		"zero amount":           func(r *types.TransferRequest) { r.Amount = decimal.Zero },
		"negative amount":       func(r *types.TransferRequest) { r.Amount = decimal.NewFromInt(-5) },
		"sub-tinybar precision": func(r *types.TransferRequest) { r.Amount = decimal.RequireFromString("0.000000001") },
	}

	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			svc, ledgerClient, _ := createTestService(t)
			req := valid()
			mutate(req)

			_, err := svc.Transfer(context.Background(), req)
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))
			ledgerClient.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
		})
	}

	t.Run("reports field names", func(t *testing.T) {
		svc, _, _ := createTestService(t)
		req := valid()
		req.FromAccountID = ""

		_, err := svc.Transfer(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fromAccountId is required")
	})
}

func TestService_GetBalance(t *testing.T) {
	svc, ledgerClient, _ := createTestService(t)
	ledgerClient.On("GetBalance", mock.Anything, "0.0.1001").Return(&types.Balance{Hbars: "100 ℏ", Tinybars: 10_000_000_000}, nil)
	ledgerClient.On("GetBalance", mock.Anything, "0.0.999999").Return(nil, errors.New("INVALID_ACCOUNT_ID"))

	result, err := svc.GetBalance(context.Background(), "0.0.1001")
	require.NoError(t, err)
	assert.Equal(t, "100 ℏ", result.Balance)

	again, err := svc.GetBalance(context.Background(), "0.0.1001")
	require.NoError(t, err)
	assert.Equal(t, result, again)

	_, err = svc.GetBalance(context.Background(), "0.0.999999")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, types.HTTPStatus(err))
	assert.Equal(t, "INVALID_ACCOUNT_ID", err.Error())
}

func TestNewValidator(t *testing.T) {
	assert.NotPanics(t, func() { newValidator() })
}

func TestService_CheckAccount(t *testing.T) {
	var logs bytes.Buffer
	ledgerClient := &MockLedgerClient{}
	svc := NewService(ledgerClient, &MockMirrorLookup{}, logger.NewWithOutput("info", &logs))
	ledgerClient.On("GetBalance", mock.Anything, "0.0.1001").Return(&types.Balance{Hbars: "5 ℏ"}, nil)
	ledgerClient.On("GetBalance", mock.Anything, "0.0.404").Return(nil, errors.New("ACCOUNT_ID_DOES_NOT_EXIST"))
	ledgerClient.On("GetBalance", mock.Anything, "0.0.500").Return(nil, errors.New("PLATFORM_NOT_ACTIVE"))

	status, err := svc.CheckAccount(context.Background(), "0.0.1001")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.Equal(t, "5 ℏ", status.Balance)

	status, err = svc.CheckAccount(context.Background(), "0.0.404")
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.Empty(t, status.Balance)
	assert.Contains(t, logs.String(), types.ErrCodeAccountNotFound)

	_, err = svc.CheckAccount(context.Background(), "0.0.500")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, types.HTTPStatus(err))

	_, err = svc.CheckAccount(context.Background(), "not-an-id")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestService_CreateTopic(t *testing.T) {
	svc, ledgerClient, _ := createTestService(t)
	receipt := testReceipt("0.0.2@1700000000.000000042")
	receipt.TopicID = "0.0.7001"
	ledgerClient.On("CreateTopic", mock.Anything, types.DefaultTopicMemo).Return(receipt, nil)
	ledgerClient.On("CreateTopic", mock.Anything, "audit").Return(receipt, nil)

	result, err := svc.CreateTopic(context.Background(), &types.CreateTopicRequest{})
	require.NoError(t, err)
	assert.Equal(t, "0.0.7001", result.TopicID)

	memo := "audit"
	_, err = svc.CreateTopic(context.Background(), &types.CreateTopicRequest{Memo: &memo})
	require.NoError(t, err)
	ledgerClient.AssertExpectations(t)
}

func TestService_SubmitTopicMessage(t *testing.T) {
	key := interfaces.TransactionKey{PayerAccountID: "0.0.2", ValidStart: validStart}
	mirrorURL := "https://testnet.mirrornode.hedera.com/api/v1/transactions/0.0.2-1700000000-000000042"

	t.Run("rejects malformed topic ids before any network call", func(t *testing.T) {
		for _, topicID := range []string{"abc", "1.2.3", "", "bad-id"} {
			svc, ledgerClient, mirror := createTestService(t)

			_, err := svc.SubmitTopicMessage(context.Background(), &types.TopicMessage{TopicID: topicID})
			require.Error(t, err, topicID)
			assert.True(t, types.IsValidation(err), topicID)
			ledgerClient.AssertNotCalled(t, "SubmitTopicMessage", mock.Anything, mock.Anything, mock.Anything)
			mirror.AssertNotCalled(t, "LookupTransaction", mock.Anything, mock.Anything)
		}
	})

	t.Run("mirror record found", func(t *testing.T) {
		svc, ledgerClient, mirror := createTestService(t)
		ledgerClient.On("SubmitTopicMessage", mock.Anything, "0.0.1234", []byte(`{"hello":"world"}`)).
			Return(testReceipt("0.0.2@1700000000.000000042"), nil)
		mirror.On("LookupTransaction", mock.Anything, key).Return(&types.MirrorResult{
			Outcome: types.MirrorFound,
			URL:     mirrorURL,
			Data:    json.RawMessage(`{"transactions":[{"result":"SUCCESS"}]}`),
		})

		result, err := svc.SubmitTopicMessage(context.Background(), &types.TopicMessage{
			TopicID: "0.0.1234",
			Message: json.RawMessage(`{ "hello": "world" }`),
		})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, mirrorURL, result.MirrorURL)
		assert.JSONEq(t, `{"transactions":[{"result":"SUCCESS"}]}`, string(result.MirrorData))
		assert.Equal(t, "https://hashscan.io/testnet/transaction/0.0.2@1700000000.000000042", result.HashscanURL)
		ledgerClient.AssertExpectations(t)
		mirror.AssertExpectations(t)
	})

	t.Run("mirror failure keeps success", func(t *testing.T) {
		svc, ledgerClient, mirror := createTestService(t)
		ledgerClient.On("SubmitTopicMessage", mock.Anything, "0.0.1234", []byte(`"ping"`)).
			Return(testReceipt("0.0.2@1700000000.000000042"), nil)
		mirror.On("LookupTransaction", mock.Anything, key).Return(&types.MirrorResult{
			Outcome: types.MirrorFailed,
			URL:     mirrorURL,
			Err:     errors.New("connection refused"),
		})

		result, err := svc.SubmitTopicMessage(context.Background(), &types.TopicMessage{
			TopicID: "0.0.1234",
			Message: json.RawMessage(`"ping"`),
		})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.NotEmpty(t, result.MirrorURL)
		assert.Equal(t, "null", string(result.MirrorData))
	})

	t.Run("missing message is sent as null", func(t *testing.T) {
		svc, ledgerClient, mirror := createTestService(t)
		ledgerClient.On("SubmitTopicMessage", mock.Anything, "0.0.1234", []byte("null")).
			Return(testReceipt("0.0.2@1700000000.000000042"), nil)
		mirror.On("LookupTransaction", mock.Anything, key).Return(&types.MirrorResult{Outcome: types.MirrorNotFound, URL: mirrorURL})

		result, err := svc.SubmitTopicMessage(context.Background(), &types.TopicMessage{TopicID: "0.0.1234"})
		require.NoError(t, err)
		assert.Equal(t, "null", string(result.MirrorData))
	})

	t.Run("ledger failure", func(t *testing.T) {
		svc, ledgerClient, mirror := createTestService(t)
		ledgerClient.On("SubmitTopicMessage", mock.Anything, "0.0.1234", mock.Anything).
			Return(nil, errors.New("INVALID_TOPIC_ID"))

		_, err := svc.SubmitTopicMessage(context.Background(), &types.TopicMessage{TopicID: "0.0.1234", Message: json.RawMessage(`1`)})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, types.HTTPStatus(err))
		mirror.AssertNotCalled(t, "LookupTransaction", mock.Anything, mock.Anything)
	})
}

func TestService_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		ledgerClient.On("GetBalance", mock.Anything, "0.0.2").Return(&types.Balance{Hbars: "9000 ℏ"}, nil)

		report := svc.HealthCheck(context.Background())
		assert.True(t, report.Healthy())
		assert.Equal(t, "9000 ℏ", report.Balance)
		assert.Equal(t, "0.0.2", report.OperatorAccount)
		assert.Equal(t, "testnet", report.Network)
		assert.Empty(t, report.Error)
	})

	t.Run("unhealthy", func(t *testing.T) {
		svc, ledgerClient, _ := createTestService(t)
		ledgerClient.On("GetBalance", mock.Anything, "0.0.2").Return(nil, errors.New("failed to connect"))

		report := svc.HealthCheck(context.Background())
		assert.False(t, report.Healthy())
		assert.Equal(t, "failed to connect", report.Error)
		assert.Empty(t, report.Balance)
	})
}
