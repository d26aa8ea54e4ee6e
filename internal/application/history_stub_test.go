package application

import (
	"context"
	"sync"
)

// recordingHistory is a SessionHistory stub that remembers the order of
// recorded keys, for asserting pipeline behavior.
type recordingHistory struct {
	mu           sync.Mutex
	recordedKeys []string
	rings        map[string][]string
}

func newRecordingHistory() *recordingHistory {
	return &recordingHistory{rings: make(map[string][]string)}
}

func (h *recordingHistory) Record(ctx context.Context, userID, key, variantID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recordedKeys = append(h.recordedKeys, key)
	ring := userID + "|" + key
	h.rings[ring] = append([]string{variantID}, h.rings[ring]...)
	return nil
}

func (h *recordingHistory) RecentlyUsed(ctx context.Context, userID, key string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.rings[userID+"|"+key]...), nil
}

func (h *recordingHistory) EvictUser(ctx context.Context, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ring := range h.rings {
		if len(ring) > len(userID) && ring[:len(userID)+1] == userID+"|" {
			delete(h.rings, ring)
		}
	}
	return nil
}

func (h *recordingHistory) SizeBytes() int64 { return 0 }
