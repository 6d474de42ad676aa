// Package datastore is a small JSON document store: an in-memory map of
// documents persisted to one file with atomic writes. It backs the guild
// storage layer; command dispatch never touches it directly.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DataStore holds JSON documents keyed by an identifier string.
type DataStore struct {
	data map[string]any
	file string

	mu           sync.RWMutex
	lastChecksum string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closed  bool
	closeMu sync.Mutex
}

const autoSaveInterval = 10 * time.Second

// New opens (or creates) the store file and starts the auto-save loop.
func New(filePath string) (*DataStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("datastore: file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("datastore: failed to create directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds := &DataStore{
		data:   make(map[string]any),
		file:   filePath,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			cancel()
			return nil, err
		}
	} else if err == nil {
		if err := ds.load(); err != nil {
			cancel()
			return nil, err
		}
	} else {
		cancel()
		return nil, fmt.Errorf("datastore: failed to stat %s: %w", filePath, err)
	}

	ds.wg.Add(1)
	go ds.autoSave()
	return ds, nil
}

// Find retrieves the document stored under key.
func (ds *DataStore) Find(key string) (any, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	v, ok := ds.data[key]
	return v, ok
}

// Set stores a document under key, replacing any previous value.
func (ds *DataStore) Set(key string, value any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.data[key] = value
}

// Edit upsert-merges fields into the document under key. A missing or
// non-object document is replaced by the fields themselves.
func (ds *DataStore) Edit(key string, fields map[string]any) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc, ok := ds.data[key].(map[string]any)
	if !ok {
		doc = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		doc[k] = v
	}
	ds.data[key] = doc
}

// Delete removes the document under key.
func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.data, key)
}

// Keys returns all document keys.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	return keys
}

// Save forces an immediate write to disk.
func (ds *DataStore) Save() error {
	return ds.save()
}

// Close stops the auto-save loop and performs a final save.
func (ds *DataStore) Close() error {
	ds.closeMu.Lock()
	if ds.closed {
		ds.closeMu.Unlock()
		return nil
	}
	ds.closed = true
	ds.closeMu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()
	ticker := time.NewTicker(autoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = ds.save()
		case <-ds.ctx.Done():
			return
		}
	}
}

// save writes the data out, skipping the write when the serialized form has
// not changed since the last save.
func (ds *DataStore) save() error {
	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("datastore: failed to marshal data: %w", err)
	}

	sum := checksum(data)
	ds.mu.Lock()
	unchanged := sum == ds.lastChecksum
	if !unchanged {
		ds.lastChecksum = sum
	}
	ds.mu.Unlock()
	if unchanged {
		return nil
	}

	return ds.writeFileAtomic(data)
}

func (ds *DataStore) load() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("datastore: failed to read file: %w", err)
	}
	var temp map[string]any
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("datastore: invalid JSON in %s: %w", ds.file, err)
	}
	ds.data = temp
	ds.lastChecksum = checksum(data)
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated store.
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmp := ds.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("datastore: failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, ds.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: failed to replace %s: %w", ds.file, err)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
