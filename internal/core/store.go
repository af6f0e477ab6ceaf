package core

// store.go holds uploaded files in memory for the life of a session.
//
// The original bytes are the only state kept between evaluations: every
// option change re-runs the pipeline from them. Files are grouped into the
// batch they were uploaded in, keep their upload order, and expire after a
// TTL that is refreshed on every read.

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defaults.
const (
	DefaultStoreTTL      = time.Hour
	DefaultStoreMaxFiles = 200
)

// FileInfo is the metadata of a stored upload.
type FileInfo struct {
	ID         string    `json:"id"`
	BatchID    string    `json:"batch_id"`
	Name       string    `json:"name"`
	Format     Format    `json:"format"`
	Size       int       `json:"size"`
	Position   int       `json:"position"`
	UploadedAt time.Time `json:"uploaded_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type storedFile struct {
	info FileInfo
	data []byte
}

// Store is a concurrency-safe in-memory upload buffer.
type Store struct {
	ttl      time.Duration
	maxFiles int
	now      func() time.Time

	mu      sync.Mutex
	files   map[string]*storedFile
	batches map[string][]string
}

// NewStore creates a store. Non-positive arguments select the defaults.
func NewStore(ttl time.Duration, maxFiles int) *Store {
	if ttl <= 0 {
		ttl = DefaultStoreTTL
	}
	if maxFiles <= 0 {
		maxFiles = DefaultStoreMaxFiles
	}
	return &Store{
		ttl:      ttl,
		maxFiles: maxFiles,
		now:      time.Now,
		files:    make(map[string]*storedFile),
		batches:  make(map[string][]string),
	}
}

// AddBatch stores files as one batch, in order. Either every file is stored
// or none is.
func (s *Store) AddBatch(files []File) (string, []FileInfo, error) {
	formats := make([]Format, len(files))
	for i, f := range files {
		format, err := FormatFromName(f.Name)
		if err != nil {
			return "", nil, err
		}
		formats[i] = format
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.files)+len(files) > s.maxFiles {
		s.sweepLocked()
	}
	if len(s.files)+len(files) > s.maxFiles {
		return "", nil, fmt.Errorf("%w: %d files stored, limit %d", ErrStoreFull, len(s.files), s.maxFiles)
	}

	batchID := uuid.NewString()
	now := s.now()
	infos := make([]FileInfo, len(files))
	ids := make([]string, len(files))
	for i, f := range files {
		data := make([]byte, len(f.Data))
		copy(data, f.Data)

		info := FileInfo{
			ID:         uuid.NewString(),
			BatchID:    batchID,
			Name:       f.Name,
			Format:     formats[i],
			Size:       len(data),
			Position:   i,
			UploadedAt: now,
			ExpiresAt:  now.Add(s.ttl),
		}
		s.files[info.ID] = &storedFile{info: info, data: data}
		ids[i] = info.ID
		infos[i] = info
	}
	s.batches[batchID] = ids
	return batchID, infos, nil
}

// Get returns a stored file and refreshes its expiry.
func (s *Store) Get(id string) (File, FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.lookup(id)
	if err != nil {
		return File{}, FileInfo{}, err
	}
	sf.info.ExpiresAt = s.now().Add(s.ttl)
	return File{Name: sf.info.Name, Data: sf.data}, sf.info, nil
}

// Info returns the metadata of a stored file without refreshing it.
func (s *Store) Info(id string) (FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.lookup(id)
	if err != nil {
		return FileInfo{}, err
	}
	return sf.info, nil
}

// Batch returns the live files of a batch in upload order and refreshes them.
func (s *Store) Batch(batchID string) ([]FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrFileNotFound)
	}

	now := s.now()
	infos := make([]FileInfo, 0, len(ids))
	for _, id := range ids {
		sf, ok := s.files[id]
		if !ok || !now.Before(sf.info.ExpiresAt) {
			continue
		}
		sf.info.ExpiresAt = now.Add(s.ttl)
		infos = append(infos, sf.info)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrFileNotFound)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Position < infos[j].Position })
	return infos, nil
}

// Delete removes a file. It reports whether the file existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, ok := s.files[id]
	if !ok {
		return false
	}
	s.remove(sf)
	return true
}

// Sweep removes expired files and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// sweepLocked must be called with mu held.
func (s *Store) sweepLocked() int {
	now := s.now()
	removed := 0
	for _, sf := range s.files {
		if !now.Before(sf.info.ExpiresAt) {
			s.remove(sf)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored files, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// StoreStatus is a snapshot of the store for health checks.
type StoreStatus struct {
	Files    int   `json:"files"`
	Batches  int   `json:"batches"`
	Bytes    int64 `json:"bytes"`
	MaxFiles int   `json:"max_files"`
}

// Status returns the current store usage.
func (s *Store) Status() StoreStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := StoreStatus{Files: len(s.files), Batches: len(s.batches), MaxFiles: s.maxFiles}
	for _, sf := range s.files {
		st.Bytes += int64(len(sf.data))
	}
	return st
}

// lookup must be called with mu held.
func (s *Store) lookup(id string) (*storedFile, error) {
	sf, ok := s.files[id]
	if !ok || !s.now().Before(sf.info.ExpiresAt) {
		return nil, fmt.Errorf("file %s: %w", id, ErrFileNotFound)
	}
	return sf, nil
}

// remove must be called with mu held.
func (s *Store) remove(sf *storedFile) {
	delete(s.files, sf.info.ID)

	ids := s.batches[sf.info.BatchID]
	kept := ids[:0]
	for _, id := range ids {
		if id != sf.info.ID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(s.batches, sf.info.BatchID)
	} else {
		s.batches[sf.info.BatchID] = kept
	}
}
