package threads

import (
	"errors"
	"sort"
	"sync"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// Store is the persistence contract for threads. Get returns (nil, nil) for
// an unknown id. ListSummaries is ordered most recently updated first.
// Implementations allow concurrent readers and a single writer per thread.
type Store interface {
	Get(id core.ThreadID) (*Thread, error)
	Save(thread *Thread) error
	Delete(id core.ThreadID) error
	List() ([]core.ThreadID, error)
	ListSummaries() ([]Summary, error)
}

// MemoryStore keeps threads in a map behind a reader/writer lock. Values are
// cloned on the way in and out, so callers never share segment slices with
// the store.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[core.ThreadID]*Thread
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[core.ThreadID]*Thread)}
}

func (store *MemoryStore) Get(id core.ThreadID) (*Thread, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	thread, ok := store.threads[id]
	if !ok {
		return nil, nil
	}

	return thread.Clone(), nil
}

func (store *MemoryStore) Save(thread *Thread) error {
	if thread == nil || thread.ID == "" {
		return errors.New("save thread: missing id")
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.threads[thread.ID] = thread.Clone()

	return nil
}

func (store *MemoryStore) Delete(id core.ThreadID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.threads, id)

	return nil
}

func (store *MemoryStore) List() ([]core.ThreadID, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	ids := make([]core.ThreadID, 0, len(store.threads))
	for id := range store.threads {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (store *MemoryStore) ListSummaries() ([]Summary, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	summaries := make([]Summary, 0, len(store.threads))
	for _, thread := range store.threads {
		summaries = append(summaries, thread.Summary())
	}

	sortSummaries(summaries)

	return summaries, nil
}

func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}

		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
}

var _ Store = (*MemoryStore)(nil)
