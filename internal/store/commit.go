package store

import (
	"fmt"
	"time"
)

// CommitBatch replaces the stored data of every file the batch names with the
// buffered data, within a single transaction. Fake (negative) IDs are
// remapped to real (positive, AUTOINCREMENT) IDs, and parent references
// within the batch are rewritten using the fakeToReal mapping.
//
// Insert order respects FK dependencies:
//  1. Old data of the replaced files is deleted
//  2. Symbols (parents are buffered before their children)
//  3. TypeReferences (depend on file_id only, which is already real)
//  4. File hashes and index times are updated
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for _, fileID := range batch.Files {
		if err := deleteFileDataTx(tx, fileID); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}

	fakeToReal := make(map[int64]int64)
	for _, sym := range batch.Symbols {
		if sym.ParentSymbolID != nil && *sym.ParentSymbolID < 0 {
			realID, ok := fakeToReal[*sym.ParentSymbolID]
			if !ok {
				return fmt.Errorf("commit batch: symbol %q has parent_symbol_id=%d not in fakeToReal map", sym.Name, *sym.ParentSymbolID)
			}
			sym.ParentSymbolID = &realID
		}
		realID, err := insertSymbol(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
	}

	for _, ref := range batch.TypeReferences {
		if _, err := insertTypeReference(tx, &ref); err != nil {
			return fmt.Errorf("commit batch: type reference %q: %w", ref.Name, err)
		}
	}

	now := time.Now()
	for _, fileID := range batch.Files {
		if _, err := tx.Exec(
			"UPDATE files SET hash = ?, last_indexed = ? WHERE id = ?",
			batch.Hashes[fileID], now, fileID,
		); err != nil {
			return fmt.Errorf("commit batch: update file: %w", err)
		}
	}

	return tx.Commit()
}

// DiscardBatch drops a batch that will not be committed. File rows the batch
// inserted are deleted; rows that existed before it are left untouched.
func (s *Store) DiscardBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	created := batch.created
	batch.created = nil
	batch.mu.Unlock()
	for _, path := range created {
		if err := s.DeleteFile(path); err != nil {
			return fmt.Errorf("discard batch: %w", err)
		}
	}
	return nil
}
