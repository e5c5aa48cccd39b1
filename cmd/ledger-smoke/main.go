// Command ledger-smoke creates a funded account on the configured network and prints its balance.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/dmaiga/solidavenir/internal/ledger"
	"github.com/dmaiga/solidavenir/internal/mirror"
	"github.com/dmaiga/solidavenir/pkg/config"
	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
)

type smokeResult struct {
	Network       string `json:"network"`
	AccountID     string `json:"accountId"`
	PublicKey     string `json:"publicKey"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	HashscanURL   string `json:"hashscanUrl"`
	Balance       string `json:"balance"`
	Tinybars      int64  `json:"tinybars"`
	MirrorURL     string `json:"mirrorUrl"`
	MirrorResult  string `json:"mirrorResult,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr so stdout carries only the JSON result
	logger := logger.NewWithOutput(cfg.LogLevel, os.Stderr)

	ctx := context.Background()
	tracing, err := monitoring.NewTracingManager(ctx, &monitoring.TracingConfig{ServiceName: "ledger-smoke"})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}

	client, err := ledger.NewClient(&cfg.Hedera, logger, monitoring.NewMetricsCollector("ledger-smoke"), tracing)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create ledger client")
	}
	lookup := mirror.NewClient(cfg.Mirror.BaseURL, config.Timeout(cfg.Mirror.Timeout), logger, nil)

	err = run(ctx, client, lookup)
	if closeErr := client.Close(); closeErr != nil {
		logger.WithError(closeErr).Warn("Failed to close ledger client")
	}
	if err != nil {
		logger.WithError(err).Error("Smoke check failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, client *ledger.Client, lookup *mirror.Client) error {
	created, err := client.CreateAccount(ctx, decimal.NewFromInt(1))
	if err != nil {
		return err
	}

	balance, err := client.GetBalance(ctx, created.Credential.AccountID)
	if err != nil {
		return err
	}

	result := smokeResult{
		Network:       client.Network(),
		AccountID:     created.Credential.AccountID,
		PublicKey:     created.Credential.PublicKey,
		TransactionID: created.Receipt.TransactionID,
		Status:        created.Receipt.Status,
		HashscanURL:   ledger.HashscanURL(client.Network(), created.Receipt.TransactionID),
		Balance:       balance.Hbars,
		Tinybars:      balance.Tinybars,
	}

	// The mirror node usually lags consensus by a few seconds, so a miss is expected
	key := interfaces.TransactionKey{
		PayerAccountID: created.Receipt.PayerAccountID,
		ValidStart:     created.Receipt.ValidStart,
	}
	mirrored := lookup.LookupTransaction(ctx, key)
	result.MirrorURL = mirrored.URL
	if record, err := mirror.Decode(mirrored); err == nil && len(record.Transactions) > 0 {
		result.MirrorResult = record.Transactions[0].Result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
