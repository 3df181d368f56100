package repository

// Wallet is the identity collaborator: it names the submitting principal
// and says whether writes can be authorized. Read-only ledger operations
// must work without a signing capability.
type Wallet interface {
	Principal() string
	CanSign() bool
}
