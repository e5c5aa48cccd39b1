// Package gateway implements the HTTP ledger gateway.
// The gateway provides:
// - Hedera account creation and hbar transfers
// - Balance and account existence queries
// - Consensus topic creation and message submission with mirror read-back
// - Health checks against the operator account
package gateway
