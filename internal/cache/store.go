// Package cache implements the offline caching layer: a gateway that fronts
// the app-shell origin and trades freshness for availability.
package cache

import (
	"context"
	"net/http"
	"time"
)

// Entry is one cached response. Entries are overwritten wholesale, never
// merged, so no torn state is observable.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`
}

// Store is namespaced cache storage. Only success-status responses are ever
// written; a Put replaces any previous entry for the key.
type Store interface {
	Get(ctx context.Context, namespace, key string) (Entry, bool, error)
	Put(ctx context.Context, namespace, key string, entry Entry) error
	Namespaces(ctx context.Context) ([]string, error)
	DropNamespace(ctx context.Context, namespace string) error
	Clear(ctx context.Context) error
}

// Key is the request identity used for cache lookups.
func Key(method, url string) string {
	return method + " " + url
}
