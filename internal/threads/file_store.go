package threads

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/RidgetopAi/ridge-context/internal/core"
)

// FileStore persists one JSON file per thread under <baseDir>/threads.
// Writes go through a temp file and rename so a crash never leaves a
// half-written thread on disk. Loaded threads are cached; cached and
// returned values are cloned like MemoryStore's.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
	cache   map[core.ThreadID]*Thread
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		cache:   make(map[core.ThreadID]*Thread),
	}
}

func (store *FileStore) threadsDir() string {
	return filepath.Join(store.baseDir, "threads")
}

func (store *FileStore) threadPath(id core.ThreadID) string {
	return filepath.Join(store.threadsDir(), sanitizeID(string(id))+".json")
}

func (store *FileStore) Get(id core.ThreadID) (*Thread, error) {
	store.mu.RLock()
	cached := store.cache[id]
	store.mu.RUnlock()

	if cached != nil {
		return cached.Clone(), nil
	}

	data, err := os.ReadFile(store.threadPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read thread %s: %w", id, err)
	}

	var thread Thread
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("parse thread %s: %w", id, err)
	}

	store.mu.Lock()
	store.cache[id] = &thread
	store.mu.Unlock()

	return thread.Clone(), nil
}

func (store *FileStore) Save(thread *Thread) error {
	if thread == nil || thread.ID == "" {
		return fmt.Errorf("save thread: missing id")
	}

	data, err := json.MarshalIndent(thread, "", "  ")
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", thread.ID, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := atomicWrite(store.threadPath(thread.ID), data); err != nil {
		return fmt.Errorf("write thread %s: %w", thread.ID, err)
	}

	store.cache[thread.ID] = thread.Clone()

	return nil
}

func (store *FileStore) Delete(id core.ThreadID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.threadPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete thread %s: %w", id, err)
	}

	delete(store.cache, id)

	return nil
}

func (store *FileStore) List() ([]core.ThreadID, error) {
	entries, err := os.ReadDir(store.threadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("list threads: %w", err)
	}

	var ids []core.ThreadID
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, core.ThreadID(strings.TrimSuffix(name, ".json")))
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (store *FileStore) ListSummaries() ([]Summary, error) {
	ids, err := store.List()
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		thread, err := store.Get(id)
		if err != nil {
			slog.Warn("skipping unreadable thread", "id", id, "error", err)
			continue
		}

		if thread == nil {
			continue
		}

		summaries = append(summaries, thread.Summary())
	}

	sortSummaries(summaries)

	return summaries, nil
}

// sanitizeID keeps thread ids safe to use as file names.
func sanitizeID(id string) string {
	id = strings.ReplaceAll(id, "..", "_")

	var out strings.Builder
	for _, r := range id {
		switch r {
		case '/', '\\', 0:
			out.WriteRune('_')
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".thread-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}

var _ Store = (*FileStore)(nil)
