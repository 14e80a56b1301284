// Package localstore is the durable client storage behind each storefront
// session: string-keyed slots holding JSON documents, plus a generic list
// codec on top of them.
package localstore

import (
	"context"
	"strings"
)

// Slots is a string-keyed byte store. Implementations must be safe for
// concurrent use.
type Slots interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const keyPrefix = "storefront"

// Key namespaces a slot name under a session (browser profile) id.
func Key(sessionID, slot string) string {
	return strings.Join([]string{keyPrefix, sessionID, slot}, ":")
}
