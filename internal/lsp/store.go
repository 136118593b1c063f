package lsp

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"

	"github.com/Sumatoshi-tech/codefix/internal/document"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
)

const csharpLanguageID = "csharp"

// snapshotKey seeds content hashing. Keys only need to be stable within a
// process.
var snapshotKey = []byte("codefix-snapshot-key-0123456789a") //nolint:gochecknoglobals // fixed hash key.

// openDocument is the client's view of a file.
type openDocument struct {
	text       string
	version    int32
	languageID string
}

// name is the file name used for language detection.
func (doc openDocument) name(uri string) string {
	name := path.Base(strings.TrimPrefix(uri, "file://"))
	if doc.languageID == csharpLanguageID && !strings.HasSuffix(name, ".cs") {
		name += ".cs"
	}

	return name
}

// DocumentStore holds the open documents keyed by URI.
type DocumentStore struct {
	documents map[string]openDocument
	mu        sync.RWMutex
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]openDocument)}
}

// Open records a newly opened document.
func (ds *DocumentStore) Open(uri, languageID, text string, version int32) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = openDocument{text: text, version: version, languageID: languageID}
}

// Update replaces the text of an open document. Unknown URIs are opened
// with no language id.
func (ds *DocumentStore) Update(uri string, version int32, edit func(text string) (string, error)) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	doc := ds.documents[uri]

	text, err := edit(doc.text)
	if err != nil {
		return err
	}

	doc.text = text
	doc.version = version
	ds.documents[uri] = doc

	return nil
}

// Get returns the document at uri.
func (ds *DocumentStore) get(uri string) (openDocument, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Text returns the current text at uri.
func (ds *DocumentStore) Text(uri string) (string, bool) {
	doc, ok := ds.get(uri)

	return doc.text, ok
}

// Close forgets the document.
func (ds *DocumentStore) Close(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// ParseFunc parses text attributed to a file name.
type ParseFunc func(ctx context.Context, name string, text []byte) (*document.Document, error)

// SnapshotCache memoizes parsed documents by content hash, so unchanged
// text is parsed once however many requests hit it.
type SnapshotCache struct {
	parse  ParseFunc
	cache  *lru.Cache[uint64, *document.Document]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewSnapshotCache creates a cache holding up to size snapshots.
func NewSnapshotCache(size int, parse ParseFunc) (*SnapshotCache, error) {
	cache, err := lru.New[uint64, *document.Document](size)
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	return &SnapshotCache{parse: parse, cache: cache}, nil
}

// Get returns the parsed snapshot of text, parsing on a miss.
func (sc *SnapshotCache) Get(ctx context.Context, name, text string) (*document.Document, error) {
	key, err := contentHash(name, text)
	if err != nil {
		return nil, err
	}

	if doc, ok := sc.cache.Get(key); ok {
		sc.hits.Add(1)

		return doc, nil
	}

	sc.misses.Add(1)

	doc, err := sc.parse(ctx, name, []byte(text))
	if err != nil {
		return nil, err
	}

	sc.cache.Add(key, doc)

	return doc, nil
}

// Len returns the number of cached snapshots.
func (sc *SnapshotCache) Len() int {
	return sc.cache.Len()
}

// CacheHits returns the number of lookups answered without parsing.
func (sc *SnapshotCache) CacheHits() int64 { return sc.hits.Load() }

// CacheMisses returns the number of lookups that parsed.
func (sc *SnapshotCache) CacheMisses() int64 { return sc.misses.Load() }

// listedAction is what resolve needs to compute an edit later.
type listedAction struct {
	uri    string
	text   string
	action *engine.Action
}

// ActionCache remembers listed actions by id until they are resolved or
// evicted.
type ActionCache struct {
	cache  *lru.Cache[string, listedAction]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewActionCache creates a cache holding up to size actions.
func NewActionCache(size int) (*ActionCache, error) {
	cache, err := lru.New[string, listedAction](size)
	if err != nil {
		return nil, fmt.Errorf("create action cache: %w", err)
	}

	return &ActionCache{cache: cache}, nil
}

func (ac *ActionCache) add(id string, listed listedAction) {
	ac.cache.Add(id, listed)
}

func (ac *ActionCache) get(id string) (listedAction, bool) {
	listed, ok := ac.cache.Get(id)
	if ok {
		ac.hits.Add(1)
	} else {
		ac.misses.Add(1)
	}

	return listed, ok
}

func (ac *ActionCache) remove(id string) {
	ac.cache.Remove(id)
}

// CacheHits returns the number of resolved ids that were found.
func (ac *ActionCache) CacheHits() int64 { return ac.hits.Load() }

// CacheMisses returns the number of resolved ids that were unknown.
func (ac *ActionCache) CacheMisses() int64 { return ac.misses.Load() }

func contentHash(name, text string) (uint64, error) {
	hash, err := highwayhash.New64(snapshotKey)
	if err != nil {
		return 0, fmt.Errorf("create content hash: %w", err)
	}

	// The name takes part because detection depends on it.
	_, _ = hash.Write([]byte(name))
	_, _ = hash.Write([]byte{0})
	_, _ = hash.Write([]byte(text))

	return hash.Sum64(), nil
}
