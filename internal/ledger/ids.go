package ledger

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmaiga/solidavenir/pkg/types"
)

var (
	// shard.realm.num, all non-negative integers
	entityIDPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	// topics live in the default shard and realm
	topicIDPattern = regexp.MustCompile(`^0\.0\.\d+$`)
)

const (
	// tinybarDecimals is the number of fractional places of an hbar amount
	tinybarDecimals = 8

	// maxHbarDigits is the integer digit count of the largest hbar amount, 92233720368
	maxHbarDigits = 11

	// maxCoefficientBits bounds the work spent on a caller supplied coefficient
	maxCoefficientBits = 256
)

// ValidateEntityID checks the shard.realm.num shape of an account id
func ValidateEntityID(id string) error {
	if !entityIDPattern.MatchString(id) {
		return types.NewValidationError(types.ErrCodeInvalidAccountID,
			fmt.Sprintf("invalid account id %q: expected shard.realm.num", id),
			map[string]interface{}{"accountId": id})
	}
	return nil
}

// ValidateTopicID checks that id belongs to the 0.0. topic family
func ValidateTopicID(id string) error {
	if !topicIDPattern.MatchString(id) {
		return types.NewValidationError(types.ErrCodeInvalidTopicID,
			fmt.Sprintf("invalid topic id %q: expected 0.0.num", id),
			map[string]interface{}{"topicId": id})
	}
	return nil
}

// IsEntityID reports whether id has the shard.realm.num shape
func IsEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}

// ToTinybars converts an hbar amount to tinybars.
// Amounts with more than eight fractional digits or beyond the int64 tinybar range cannot be represented.
// Only the coefficient and exponent are inspected, so a huge exponent is rejected without rescaling.
func ToTinybars(hbars decimal.Decimal) (int64, error) {
	coef := hbars.Coefficient()
	if coef.Sign() == 0 {
		return 0, nil
	}
	if coef.BitLen() > maxCoefficientBits {
		return 0, amountOutOfRange()
	}

	exp := int64(hbars.Exponent())
	ten := big.NewInt(10)
	rem := new(big.Int)
	for exp < 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}

	if exp < -tinybarDecimals {
		return 0, types.NewValidationError(types.ErrCodeInvalidAmount,
			fmt.Sprintf("amount has more than %d decimal places", tinybarDecimals), nil)
	}

	digits := int64(len(new(big.Int).Abs(coef).String()))
	if exp+digits > maxHbarDigits {
		return 0, amountOutOfRange()
	}

	scale := new(big.Int).Exp(ten, big.NewInt(exp+tinybarDecimals), nil)
	tinybars := new(big.Int).Mul(coef, scale)
	if !tinybars.IsInt64() {
		return 0, amountOutOfRange()
	}
	return tinybars.Int64(), nil
}

func amountOutOfRange() error {
	return types.NewValidationError(types.ErrCodeInvalidAmount, "amount is out of range", nil)
}

// HashscanURL links a transaction on the public explorer
func HashscanURL(network, transactionID string) string {
	return fmt.Sprintf("https://hashscan.io/%s/tx/%s", network, transactionID)
}

// HashscanTransactionURL is the long form of HashscanURL used for topic messages
func HashscanTransactionURL(network, transactionID string) string {
	return fmt.Sprintf("https://hashscan.io/%s/transaction/%s", network, transactionID)
}

// IsAccountNotFound reports whether err is the ledger's answer for an unknown account
func IsAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ACCOUNT_ID_DOES_NOT_EXIST") || strings.Contains(msg, "INVALID_ACCOUNT_ID")
}
