package identity

import (
	"airfare-ledger-service/pkg/logger"
)

// EnvWallet is the identity collaborator backed by environment
// configuration: a principal string plus an optional signing key. Holding
// a signing key is what authorizes ledger writes; without one the wallet
// is read-only.
type EnvWallet struct {
	principal  string
	signingKey string
	logger     logger.Logger
}

// NewEnvWallet creates a new environment-backed wallet
func NewEnvWallet(principal, signingKey string, logger logger.Logger) *EnvWallet {
	if signingKey == "" {
		logger.Warn("No signing key configured, wallet is read-only", "principal", principal)
	}
	return &EnvWallet{
		principal:  principal,
		signingKey: signingKey,
		logger:     logger,
	}
}

// Principal returns the identifier of the submitting principal
func (w *EnvWallet) Principal() string {
	return w.principal
}

// CanSign reports whether this wallet can authorize ledger writes
func (w *EnvWallet) CanSign() bool {
	return w.signingKey != ""
}
