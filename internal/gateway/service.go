package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmaiga/solidavenir/internal/ledger"
	"github.com/dmaiga/solidavenir/pkg/interfaces"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
	"github.com/dmaiga/solidavenir/pkg/types"
)

// Service validates gateway requests, delegates them to the ledger client and shapes the results.
// It holds no state of its own besides its collaborators.
type Service struct {
	ledger   interfaces.LedgerClient
	mirror   interfaces.MirrorLookup
	health   *monitoring.HealthChecker
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a gateway service over an already configured ledger client
func NewService(ledgerClient interfaces.LedgerClient, mirror interfaces.MirrorLookup, log *logger.Logger) *Service {
	s := &Service{
		ledger:   ledgerClient,
		mirror:   mirror,
		validate: newValidator(),
		logger:   log,
	}

	s.health = monitoring.NewHealthChecker(ledgerClient.OperatorAccountID(), ledgerClient.Network(),
		func(ctx context.Context) (string, error) {
			balance, err := ledgerClient.GetBalance(ctx, ledgerClient.OperatorAccountID())
			if err != nil {
				return "", err
			}
			return balance.Hbars, nil
		})

	return s
}

// newValidator registers the entityid tag and reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("entityid", func(fl validator.FieldLevel) bool {
		return ledger.IsEntityID(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// CreateAccount creates and funds a new account, defaulting to 100 hbar
func (s *Service) CreateAccount(ctx context.Context, req *types.CreateAccountRequest) (*types.OperationResult, error) {
	initialBalance := types.DefaultInitialBalance
	if req != nil && req.InitialBalance != nil {
		initialBalance = *req.InitialBalance
	}

	if initialBalance.IsNegative() {
		return nil, types.NewValidationError(types.ErrCodeInvalidAmount,
			"initialBalance must not be negative", nil)
	}
	if _, err := ledger.ToTinybars(initialBalance); err != nil {
		return nil, err
	}

	created, err := s.ledger.CreateAccount(ctx, initialBalance)
	if err != nil {
		return nil, ledgerError("create account", err)
	}

	return &types.OperationResult{
		Success:       true,
		AccountID:     created.Credential.AccountID,
		PrivateKey:    created.Credential.PrivateKey,
		PublicKey:     created.Credential.PublicKey,
		TransactionID: created.Receipt.TransactionID,
		Status:        created.Receipt.Status,
		HashscanURL:   ledger.HashscanURL(s.ledger.Network(), created.Receipt.TransactionID),
	}, nil
}

// Transfer moves hbar between two accounts with the sender's key
func (s *Service) Transfer(ctx context.Context, req *types.TransferRequest) (*types.OperationResult, error) {
	if err := s.validateTransfer(req); err != nil {
		return nil, err
	}

	receipt, err := s.ledger.Transfer(ctx, req)
	if err != nil {
		return nil, ledgerError("transfer", err)
	}

	return &types.OperationResult{
		Success:       true,
		TransactionID: receipt.TransactionID,
		Status:        receipt.Status,
		HashscanURL:   ledger.HashscanURL(s.ledger.Network(), receipt.TransactionID),
	}, nil
}

func (s *Service) validateTransfer(req *types.TransferRequest) error {
	if req == nil {
		return types.NewValidationError(types.ErrCodeInvalidBody, "request body is required", nil)
	}
	if err := s.validate.Struct(req); err != nil {
		return validationError(err)
	}
	if !req.Amount.IsPositive() {
		return types.NewValidationError(types.ErrCodeInvalidAmount,
			"amount must be greater than zero", nil)
	}
	_, err := ledger.ToTinybars(req.Amount)
	return err
}

// GetBalance returns the display balance of accountID.
// Every failure, including an unknown account, is reported as a ledger error.
func (s *Service) GetBalance(ctx context.Context, accountID string) (*types.OperationResult, error) {
	balance, err := s.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return nil, ledgerError("balance query", err)
	}

	return &types.OperationResult{Success: true, Balance: balance.Hbars}, nil
}

// CheckAccount reports whether accountID exists, with its balance when it does
func (s *Service) CheckAccount(ctx context.Context, accountID string) (*types.AccountStatus, error) {
	if err := ledger.ValidateEntityID(accountID); err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, accountID)
	if err != nil {
		if ledger.IsAccountNotFound(err) {
			s.logger.WithContext(ctx).WithFields(map[string]interface{}{
				"account":    accountID,
				"error_code": types.ErrCodeAccountNotFound,
			}).Info("Account does not exist")
			return &types.AccountStatus{Success: true, AccountID: accountID, Exists: false}, nil
		}
		return nil, ledgerError("account check", err)
	}

	return &types.AccountStatus{
		Success:   true,
		AccountID: accountID,
		Exists:    true,
		Balance:   balance.Hbars,
	}, nil
}

// CreateTopic creates a consensus topic, defaulting the memo
func (s *Service) CreateTopic(ctx context.Context, req *types.CreateTopicRequest) (*types.OperationResult, error) {
	memo := types.DefaultTopicMemo
	if req != nil && req.Memo != nil {
		memo = *req.Memo
	}

	receipt, err := s.ledger.CreateTopic(ctx, memo)
	if err != nil {
		return nil, ledgerError("create topic", err)
	}

	return &types.OperationResult{
		Success:       true,
		TopicID:       receipt.TopicID,
		TransactionID: receipt.TransactionID,
		Status:        receipt.Status,
		HashscanURL:   ledger.HashscanURL(s.ledger.Network(), receipt.TransactionID),
	}, nil
}

// SubmitTopicMessage posts the JSON form of msg.Message to its topic, then reads the
// transaction back from the mirror node. A failed mirror read only nulls mirrorData.
func (s *Service) SubmitTopicMessage(ctx context.Context, msg *types.TopicMessage) (*types.MessageResult, error) {
	if msg == nil {
		return nil, types.NewValidationError(types.ErrCodeInvalidBody, "request body is required", nil)
	}
	if err := ledger.ValidateTopicID(msg.TopicID); err != nil {
		return nil, err
	}

	payload, err := serializeMessage(msg.Message)
	if err != nil {
		return nil, err
	}

	receipt, err := s.ledger.SubmitTopicMessage(ctx, msg.TopicID, payload)
	if err != nil {
		return nil, ledgerError("submit message", err)
	}

	key := interfaces.TransactionKey{
		PayerAccountID: receipt.PayerAccountID,
		ValidStart:     receipt.ValidStart,
	}
	mirrored := s.mirror.LookupTransaction(ctx, key)

	if !mirrored.Found() {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"transaction_id": receipt.TransactionID,
			"mirror_url":     mirrored.URL,
			"outcome":        string(mirrored.Outcome),
		}).Warn("Mirror record unavailable, returning null mirrorData")
	}

	mirrorURL := mirrored.URL
	if mirrorURL == "" {
		mirrorURL = s.mirror.TransactionURL(key)
	}

	return &types.MessageResult{
		Success:       true,
		Status:        receipt.Status,
		TransactionID: receipt.TransactionID,
		HashscanURL:   ledger.HashscanTransactionURL(s.ledger.Network(), receipt.TransactionID),
		MirrorURL:     mirrorURL,
		MirrorData:    mirrored.DataOrNil(),
	}, nil
}

// HealthCheck probes the operator account balance
func (s *Service) HealthCheck(ctx context.Context) *monitoring.HealthReport {
	return s.health.Check(ctx)
}

// serializeMessage compacts the caller's JSON value; a missing message is sent as null
func serializeMessage(raw json.RawMessage) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, types.NewInternalError(types.ErrCodeSerializationFail, "failed to serialize message", err)
	}
	return buf.Bytes(), nil
}

// ledgerError keeps validation errors raised by the ledger client as client errors
func ledgerError(operation string, err error) error {
	if types.IsValidation(err) {
		return err
	}
	return types.NewLedgerError(operation, err)
}

// validationError flattens validator errors into a single validation error
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewValidationError(types.ErrCodeValidationFailed, err.Error(), nil)
	}

	messages := make([]string, 0, len(verrs))
	fields := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "entityid":
			messages = append(messages, fmt.Sprintf("%s must be an account id of the form shard.realm.num", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
		fields[fe.Field()] = fe.Tag()
	}

	return types.NewValidationError(types.ErrCodeValidationFailed, strings.Join(messages, "; "), fields)
}
