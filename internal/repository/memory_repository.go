package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// MemoryDocumentStore keeps documents in process memory. It backs DOCUMENT_STORE=memory
// for local development and the test suites.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	docs map[string]map[string]*Document
}

// NewMemoryDocumentStore constructs an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{now: time.Now, docs: make(map[string]map[string]*Document)}
}

// SetClock overrides the timestamp source.
func (s *MemoryDocumentStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *MemoryDocumentStore) Create(_ context.Context, collection, id string, data map[string]any) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]*Document)
		s.docs[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return nil, ErrDocumentExists
	}
	now := s.now().UTC()
	doc := &Document{ID: id, Collection: collection, Data: copyData(data), CreatedAt: now, UpdatedAt: now}
	coll[id] = doc
	out := *doc
	out.Data = copyData(doc.Data)
	return &out, nil
}

func (s *MemoryDocumentStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	out := *doc
	out.Data = copyData(doc.Data)
	return &out, nil
}

func (s *MemoryDocumentStore) List(_ context.Context, collection string, q DocumentQuery) (*DocumentList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Document, 0)
	for _, doc := range s.docs[collection] {
		if matchesAll(doc, q.Filters) {
			out := *doc
			out.Data = copyData(doc.Data)
			matches = append(matches, out)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.NewestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if q.NewestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matches) {
		start = len(matches)
	}
	end := start + limit
	if end > len(matches) {
		end = len(matches)
	}
	return &DocumentList{Total: len(matches), Documents: matches[start:end]}, nil
}

func matchesAll(doc *Document, filters []Equal) bool {
	for _, f := range filters {
		if fmt.Sprint(doc.Data[f.Field]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func (s *MemoryDocumentStore) Update(_ context.Context, collection, id string, patch map[string]any) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	for k, v := range patch {
		doc.Data[k] = v
	}
	doc.UpdatedAt = s.now().UTC()
	out := *doc
	out.Data = copyData(doc.Data)
	return &out, nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[collection][id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs[collection], id)
	return nil
}

type memoryFile struct {
	meta domain.StoredFile
	data []byte
}

// MemoryFileStore keeps uploaded blobs in process memory.
type MemoryFileStore struct {
	mu      sync.RWMutex
	bucket  string
	baseURL string
	files   map[string]memoryFile
}

// NewMemoryFileStore constructs an empty store whose view URLs point below baseURL.
func NewMemoryFileStore(bucket, baseURL string) *MemoryFileStore {
	return &MemoryFileStore{bucket: bucket, baseURL: baseURL, files: make(map[string]memoryFile)}
}

func (s *MemoryFileStore) Put(_ context.Context, upload FileUpload) (*domain.StoredFile, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	meta := domain.StoredFile{
		ID:          uuid.NewString(),
		BucketID:    s.bucket,
		Name:        upload.Name,
		ContentType: upload.ContentType,
		SizeBytes:   int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}

	s.mu.Lock()
	s.files[meta.ID] = memoryFile{meta: meta, data: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

func (s *MemoryFileStore) Open(_ context.Context, id string) (*domain.StoredFile, io.ReadCloser, error) {
	s.mu.RLock()
	file, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrFileNotFound
	}
	meta := file.meta
	return &meta, io.NopCloser(bytes.NewReader(file.data)), nil
}

func (s *MemoryFileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *MemoryFileStore) ViewURL(id string) string {
	return ViewURL(s.baseURL, s.bucket, id)
}

// Has reports whether a file id is stored.
func (s *MemoryFileStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[id]
	return ok
}
