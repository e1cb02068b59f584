package storage

import (
	"context"
	"errors"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

var (
	// ErrEmptyCatalog indicates the backing store holds no package definitions.
	ErrEmptyCatalog = errors.New("catalog contains no packages")
)

// Storage provides the package catalog used by the calculator.
type Storage interface {
	LoadCatalog(ctx context.Context) (calculator.Catalog, error)
	Close() error
}

// MemoryStorage serves a catalog held in memory.
type MemoryStorage struct {
	catalog calculator.Catalog
}

// NewMemoryStorage initialises storage with the default catalog.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{catalog: calculator.DefaultCatalog()}
}

// NewMemoryStorageWithCatalog serves the provided catalog.
func NewMemoryStorageWithCatalog(catalog calculator.Catalog) *MemoryStorage {
	return &MemoryStorage{catalog: catalog}
}

// LoadCatalog returns the stored catalog. Catalogs are immutable so no copy is needed.
func (s *MemoryStorage) LoadCatalog(ctx context.Context) (calculator.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return calculator.Catalog{}, err
	}
	if s.catalog.Len() == 0 {
		return calculator.Catalog{}, ErrEmptyCatalog
	}
	return s.catalog, nil
}

// Close is a no-op for in-memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}
