package repository

import "context"

// KeyIndexRepository maintains the single ledger entry holding the ordered
// set of all query record keys.
//
// AppendKey is a read-modify-write over that one entry; the ledger offers
// no conditional write, so two concurrent appenders can lose one key (the
// classic lost-update race). This is a known consistency gap: a periodic
// full listing through the record store is authoritative over any cached
// key list.
type KeyIndexRepository interface {
	ListKeys(ctx context.Context) ([]string, error)
	AppendKey(ctx context.Context, key string) error
}
