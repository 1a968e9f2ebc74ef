package store

import (
	"hash/fnv"
	"sync"
)

// shardCount derives the number of logical-lock shards from the
// worker count (spec §9: "K≈4×W"), so documents rarely collide on the
// same shard even at the highest configured worker counts.
func shardCount(workerCount int) int {
	k := workerCount * 4
	if k < 1 {
		k = 1
	}
	return k
}

// DocumentLocks serializes chunk-insert sequences per document without
// a single global mutex: a document's writes hash onto one of K
// shards, so two different documents usually take different locks.
type DocumentLocks struct {
	shards []sync.Mutex
}

// NewDocumentLocks creates a DocumentLocks sized for workerCount
// workers.
func NewDocumentLocks(workerCount int) *DocumentLocks {
	return &DocumentLocks{shards: make([]sync.Mutex, shardCount(workerCount))}
}

// Lock acquires the shard for documentID.
func (l *DocumentLocks) Lock(documentID string) {
	l.shard(documentID).Lock()
}

// Unlock releases the shard for documentID.
func (l *DocumentLocks) Unlock(documentID string) {
	l.shard(documentID).Unlock()
}

func (l *DocumentLocks) shard(documentID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(documentID))
	return &l.shards[h.Sum32()%uint32(len(l.shards))]
}
