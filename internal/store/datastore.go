package store

// DataStore is the interface for extraction-phase data access. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering until a compile
// cycle succeeds) implement this interface.
type DataStore interface {
	InsertSymbol(sym *Symbol) (int64, error)
	InsertTypeReference(ref *TypeReference) (int64, error)

	SymbolsByName(name string) ([]*Symbol, error)
	SymbolsByFile(fileID int64) ([]*Symbol, error)
}

var _ DataStore = (*Store)(nil)
