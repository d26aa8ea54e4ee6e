package output

import "context"

// SessionHistory tracks which variant ids a user saw recently, per message
// key, so the selector can avoid immediate repetition.
//
// Implementations must serialize concurrent access for the same user while
// never blocking requests for other users. Capacity per (user, key) is
// bounded; total memory is bounded at user granularity.
type SessionHistory interface {
	// Record notes that variantID was just served to userID for key,
	// evicting the oldest entry once the per-(user, key) capacity is hit.
	Record(ctx context.Context, userID, key, variantID string) error

	// RecentlyUsed returns the variant ids recorded for (userID, key),
	// most recent first. Unknown users and keys return an empty slice.
	RecentlyUsed(ctx context.Context, userID, key string) ([]string, error)

	// EvictUser drops everything tracked for userID. Driven by the
	// "user session ended" lifecycle signal; the next selection for that
	// user behaves like first contact.
	EvictUser(ctx context.Context, userID string) error

	// SizeBytes estimates the memory currently held by the history.
	SizeBytes() int64
}
