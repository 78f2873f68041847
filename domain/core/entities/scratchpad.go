package entities

import "time"

// ScratchpadEntry is keyed agent working memory in the KV store with a
// mandatory TTL; never indexed for search, surfaced only by key.
type ScratchpadEntry struct {
	AgentID   string
	Key       string
	Value     interface{}
	TTL       time.Duration
	WrittenAt time.Time
}

func (e ScratchpadEntry) StorageKey() string {
	return "scratch:" + e.AgentID + ":" + e.Key
}
