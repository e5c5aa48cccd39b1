// Package ledger owns the long-lived Hedera client handle used by the gateway.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/shopspring/decimal"

	"github.com/dmaiga/solidavenir/pkg/config"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
	"github.com/dmaiga/solidavenir/pkg/types"
)

// Client implements interfaces.LedgerClient on top of the Hedera SDK.
// The SDK client is safe for concurrent use, so a single Client serves every request.
type Client struct {
	client      *hedera.Client
	network     string
	operatorID  hedera.AccountID
	operatorKey hedera.PrivateKey
	logger      *logger.Logger
	metrics     *monitoring.MetricsCollector
	tracing     *monitoring.TracingManager
}

// NewClient creates a client bound to one network and one operator identity
func NewClient(cfg *config.HederaConfig, log *logger.Logger, metrics *monitoring.MetricsCollector, tracing *monitoring.TracingManager) (*Client, error) {
	operatorID, err := hedera.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator account id: %w", err)
	}

	operatorKey, err := parsePrivateKey(cfg.OperatorPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid operator private key: %w", err)
	}

	client, err := hedera.ClientForName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Network, err)
	}
	client.SetOperator(operatorID, operatorKey)

	log.WithFields(map[string]interface{}{
		"operator_account": operatorID.String(),
		"network":          cfg.Network,
	}).Info("Ledger client configured")

	return &Client{
		client:      client,
		network:     cfg.Network,
		operatorID:  operatorID,
		operatorKey: operatorKey,
		logger:      log,
		metrics:     metrics,
		tracing:     tracing,
	}, nil
}

// OperatorAccountID returns the account paying for gateway transactions
func (c *Client) OperatorAccountID() string {
	return c.operatorID.String()
}

// Network returns the network name the client is bound to
func (c *Client) Network() string {
	return c.network
}

// Close releases the connections held by the SDK client
func (c *Client) Close() error {
	c.logger.WithComponent("ledger").Info("Closing ledger client")
	return c.client.Close()
}

// CreateAccount generates an ECDSA key pair and funds a new account with initialBalance hbar
func (c *Client) CreateAccount(ctx context.Context, initialBalance decimal.Decimal) (result *types.AccountCreation, err error) {
	done := c.observe(ctx, "create_account")
	defer func() { done(receiptTxID(result), err, nil) }()

	tinybars, err := ToTinybars(initialBalance)
	if err != nil {
		return nil, err
	}

	privateKey, err := hedera.PrivateKeyGenerateEcdsa()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	publicKey := privateKey.PublicKey()

	resp, err := hedera.NewAccountCreateTransaction().
		SetKey(publicKey).
		SetInitialBalance(hedera.HbarFromTinybar(tinybars)).
		Execute(c.client)
	if err != nil {
		return nil, err
	}

	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return nil, err
	}
	if receipt.AccountID == nil {
		return nil, fmt.Errorf("receipt %s carries no account id", resp.TransactionID.String())
	}

	normalized := normalizeReceipt(resp, receipt)
	return &types.AccountCreation{
		Credential: types.AccountCredential{
			AccountID:  receipt.AccountID.String(),
			PrivateKey: privateKey.String(),
			PublicKey:  publicKey.String(),
		},
		Receipt: *normalized,
	}, nil
}

// Transfer moves req.Amount hbar between two accounts, signed with the sender's key only
func (c *Client) Transfer(ctx context.Context, req *types.TransferRequest) (result *types.Receipt, err error) {
	done := c.observe(ctx, "transfer")
	details := map[string]interface{}{
		"from": req.FromAccountID,
		"to":   req.ToAccountID,
	}
	defer func() { done(txIDOf(result), err, details) }()

	tx, err := NewTransferTransaction(req)
	if err != nil {
		return nil, err
	}
	// Printed only once the amount is known to be in range
	details["amount"] = req.Amount.String()

	senderKey, err := parsePrivateKey(req.FromPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid sender private key: %w", err)
	}

	frozen, err := tx.FreezeWith(c.client)
	if err != nil {
		return nil, err
	}

	resp, err := frozen.Sign(senderKey).Execute(c.client)
	if err != nil {
		return nil, err
	}

	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return nil, err
	}

	return normalizeReceipt(resp, receipt), nil
}

// NewTransferTransaction builds the two legs of a transfer: -amount on the sender, +amount on the receiver
func NewTransferTransaction(req *types.TransferRequest) (*hedera.TransferTransaction, error) {
	from, err := hedera.AccountIDFromString(req.FromAccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender account id: %w", err)
	}

	to, err := hedera.AccountIDFromString(req.ToAccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver account id: %w", err)
	}

	tinybars, err := ToTinybars(req.Amount)
	if err != nil {
		return nil, err
	}

	return hedera.NewTransferTransaction().
		AddHbarTransfer(from, hedera.HbarFromTinybar(-tinybars)).
		AddHbarTransfer(to, hedera.HbarFromTinybar(tinybars)), nil
}

// GetBalance queries the current balance of accountID
func (c *Client) GetBalance(ctx context.Context, accountID string) (result *types.Balance, err error) {
	done := c.observe(ctx, "get_balance")
	defer func() { done("", err, map[string]interface{}{"account": accountID}) }()

	id, err := hedera.AccountIDFromString(accountID)
	if err != nil {
		return nil, err
	}

	balance, err := hedera.NewAccountBalanceQuery().
		SetAccountID(id).
		Execute(c.client)
	if err != nil {
		return nil, err
	}

	return &types.Balance{
		Hbars:    balance.Hbars.String(),
		Tinybars: balance.Hbars.AsTinybar(),
	}, nil
}

// CreateTopic creates a consensus topic signed by the operator
func (c *Client) CreateTopic(ctx context.Context, memo string) (result *types.Receipt, err error) {
	done := c.observe(ctx, "create_topic")
	defer func() { done(txIDOf(result), err, map[string]interface{}{"memo": memo}) }()

	tx, err := hedera.NewTopicCreateTransaction().
		SetTopicMemo(memo).
		FreezeWith(c.client)
	if err != nil {
		return nil, err
	}

	resp, err := tx.Sign(c.operatorKey).Execute(c.client)
	if err != nil {
		return nil, err
	}

	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return nil, err
	}
	if receipt.TopicID == nil {
		return nil, fmt.Errorf("receipt %s carries no topic id", resp.TransactionID.String())
	}

	return normalizeReceipt(resp, receipt), nil
}

// SubmitTopicMessage posts message to topicID and waits for its receipt
func (c *Client) SubmitTopicMessage(ctx context.Context, topicID string, message []byte) (result *types.Receipt, err error) {
	done := c.observe(ctx, "submit_message")
	defer func() {
		done(txIDOf(result), err, map[string]interface{}{
			"topic":         topicID,
			"message_bytes": len(message),
		})
	}()

	id, err := hedera.TopicIDFromString(topicID)
	if err != nil {
		return nil, err
	}

	resp, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(id).
		SetMessage(message).
		Execute(c.client)
	if err != nil {
		return nil, err
	}

	receipt, err := resp.GetReceipt(c.client)
	if err != nil {
		return nil, err
	}

	return normalizeReceipt(resp, receipt), nil
}

// observe opens a span for operation and returns the callback closing it.
// The callback records metrics and the ledger log line.
func (c *Client) observe(ctx context.Context, operation string) func(txID string, err error, details map[string]interface{}) {
	start := time.Now()
	ctx, span := c.tracing.StartLedgerSpan(ctx, c.network, operation)

	return func(txID string, err error, details map[string]interface{}) {
		defer span.End()

		duration := time.Since(start)
		if err != nil {
			c.tracing.RecordError(span, err)
			if details == nil {
				details = map[string]interface{}{}
			}
			details["error"] = err.Error()
		}

		c.metrics.RecordLedgerOperation(operation, err, duration)
		c.logger.LedgerTransaction(ctx, operation, err == nil, txID, duration.Milliseconds(), details)
	}
}

// normalizeReceipt flattens an SDK response and its receipt
func normalizeReceipt(resp hedera.TransactionResponse, receipt hedera.TransactionReceipt) *types.Receipt {
	txID := resp.TransactionID

	out := &types.Receipt{
		TransactionID: txID.String(),
		Status:        receipt.Status.String(),
	}
	if txID.AccountID != nil {
		out.PayerAccountID = txID.AccountID.String()
	}
	if txID.ValidStart != nil {
		out.ValidStart = *txID.ValidStart
	}
	if receipt.AccountID != nil {
		out.AccountID = receipt.AccountID.String()
	}
	if receipt.TopicID != nil {
		out.TopicID = receipt.TopicID.String()
	}
	return out
}

// parsePrivateKey accepts the ECDSA hex keys issued by the portal as well as DER encoded keys
func parsePrivateKey(s string) (hedera.PrivateKey, error) {
	key, err := hedera.PrivateKeyFromStringECDSA(s)
	if err == nil {
		return key, nil
	}
	return hedera.PrivateKeyFromString(s)
}

func txIDOf(r *types.Receipt) string {
	if r == nil {
		return ""
	}
	return r.TransactionID
}

func receiptTxID(r *types.AccountCreation) string {
	if r == nil {
		return ""
	}
	return r.Receipt.TransactionID
}
