package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// KeyPrefix versions every cache key; bumping it invalidates all tiers at
// once.
const KeyPrefix = "wayfare:v1:"

const (
	// TTLIntermediate covers intra-pipeline intermediates such as distance
	// lookups and fused candidate lists.
	TTLIntermediate = time.Hour
	// TTLExpensive covers external calls worth keeping longer: embeddings,
	// completions and final itineraries.
	TTLExpensive = 24 * time.Hour
)

// Store is the shared key-value cache contract. Implementations must be safe
// for concurrent readers and writers; entries are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key builds a content-addressed cache key from a stage context label and an
// arbitrary payload. The payload is canonicalized before hashing so field
// insertion order never changes the key.
func Key(contextLabel string, payload interface{}) (string, error) {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("cache key payload: %w", err)
	}
	sum := sha256.Sum256(append([]byte(contextLabel+"|"), canonical...))
	return KeyPrefix + contextLabel + ":" + hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips the payload through a generic value so map keys
// are emitted in sorted order regardless of how the payload was built.
func canonicalJSON(payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// GetJSON looks up the payload-addressed entry and unmarshals it into out.
func GetJSON(ctx context.Context, store Store, contextLabel string, payload, out interface{}) (bool, error) {
	key, err := Key(contextLabel, payload)
	if err != nil {
		return false, err
	}
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt entry behaves like a miss.
		return false, nil
	}
	return true, nil
}

// SetJSON stores value under the payload-addressed key.
func SetJSON(ctx context.Context, store Store, contextLabel string, payload, value interface{}, ttl time.Duration) error {
	key, err := Key(contextLabel, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw, ttl)
}
