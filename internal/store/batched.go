package store

import (
	"errors"
	"sync"
)

// BatchedStore buffers extraction inserts in memory using fake (negative)
// IDs. It implements DataStore so extraction can write to it without knowing
// whether it is hitting SQLite or an in-memory buffer. Nothing reaches the
// database until CommitBatch.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
// Read queries pass through to the underlying Store.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	// Files lists the file IDs whose data the batch replaces, in the order
	// they were added.
	Files []int64
	// Hashes holds the new content hash per file ID.
	Hashes map[int64]string

	Symbols        []Symbol
	TypeReferences []TypeReference

	files      map[int64]bool
	created    []string
	nextFakeID int64
}

var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		Hashes:     make(map[int64]string),
		files:      make(map[int64]bool),
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

// EnsureFile returns the stored row for path, inserting it when missing.
// Rows inserted through the batch are removed again by DiscardBatch.
func (b *BatchedStore) EnsureFile(path, language string) (*File, error) {
	f, err := b.store.FileByPath(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	f, err = b.store.EnsureFile(path, language)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.created = append(b.created, path)
	b.mu.Unlock()
	return f, nil
}

// ReplaceFile marks a file whose stored data the batch replaces, even when
// the batch adds nothing for it.
func (b *BatchedStore) ReplaceFile(fileID int64, hash string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.files[fileID] {
		b.files[fileID] = true
		b.Files = append(b.Files, fileID)
	}
	b.Hashes[fileID] = hash
}

func (b *BatchedStore) InsertSymbol(sym *Symbol) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	sym.ID = fakeID
	b.Symbols = append(b.Symbols, *sym)
	return fakeID, nil
}

func (b *BatchedStore) InsertTypeReference(ref *TypeReference) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	ref.ID = fakeID
	b.TypeReferences = append(b.TypeReferences, *ref)
	return fakeID, nil
}

// SymbolsByName passes through to the underlying Store.
func (b *BatchedStore) SymbolsByName(name string) ([]*Symbol, error) {
	return b.store.SymbolsByName(name)
}

// SymbolsByFile returns the buffered symbols of a file being replaced, or the
// stored symbols of any other file.
func (b *BatchedStore) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	b.mu.Lock()
	replaced := b.files[fileID]
	b.mu.Unlock()
	if !replaced {
		return b.store.SymbolsByFile(fileID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*Symbol
	for i := range b.Symbols {
		if b.Symbols[i].FileID != nil && *b.Symbols[i].FileID == fileID {
			out = append(out, &b.Symbols[i])
		}
	}
	return out, nil
}

// ClassHashes maps the FQN of every class the batch holds for a file to its
// signature hash.
func (b *BatchedStore) ClassHashes(fileID int64) (map[string]string, error) {
	syms, err := b.SymbolsByFile(fileID)
	if err != nil {
		return nil, err
	}
	return classHashes(syms), nil
}
