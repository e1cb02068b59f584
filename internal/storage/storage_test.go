package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

func customCatalog(t *testing.T) calculator.Catalog {
	t.Helper()
	c, err := calculator.NewCatalog(decimal.NewFromInt(750),
		calculator.PackageInfo{Type: "weekend", Name: "Weekend", Days: 2, Rate: decimal.RequireFromString("950.5"), Description: "Saturdays and Sundays"},
		calculator.PackageInfo{Type: "compact", Name: "Compact", Days: 3, Rate: decimal.NewFromInt(800)},
	)
	require.NoError(t, err)
	return c
}

func TestNewMemoryStorageReturnsDefaultCatalog(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	got, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, calculator.DefaultCatalog().Packages(), got.Packages())
	assert.True(t, got.ServiceFee().Equal(calculator.DefaultServiceFee))
	assert.NoError(t, store.Close())
}

func TestMemoryStorageWithCatalog(t *testing.T) {
	t.Parallel()

	want := customCatalog(t)
	got, err := NewMemoryStorageWithCatalog(want).LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Packages(), got.Packages())
}

func TestMemoryStorageRejectsEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStorageWithCatalog(calculator.Catalog{}).LoadCatalog(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestMemoryStorageHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStorage().LoadCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStorageSeedsDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewSQLite(ctx, ":memory:", calculator.DefaultCatalog())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	got, err := store.LoadCatalog(ctx)
	require.NoError(t, err)

	want := calculator.DefaultCatalog().Packages()
	gotPkgs := got.Packages()
	require.Len(t, gotPkgs, len(want))
	for i := range want {
		assert.Equal(t, want[i].Type, gotPkgs[i].Type)
		assert.Equal(t, want[i].Name, gotPkgs[i].Name)
		assert.Equal(t, want[i].Days, gotPkgs[i].Days)
		assert.True(t, want[i].Rate.Equal(gotPkgs[i].Rate))
		assert.Equal(t, want[i].Description, gotPkgs[i].Description)
	}
	assert.True(t, got.ServiceFee().Equal(decimal.NewFromInt(1000)))
}

func TestSQLiteStorageKeepsExistingRowsOnReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	first, err := NewSQLite(ctx, path, customCatalog(t))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// a different seed must not overwrite what is already stored
	second, err := NewSQLite(ctx, path, calculator.DefaultCatalog())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.LoadCatalog(ctx)
	require.NoError(t, err)

	pkgs := got.Packages()
	require.Len(t, pkgs, 2)
	assert.Equal(t, calculator.PackageType("weekend"), pkgs[0].Type)
	assert.True(t, pkgs[0].Rate.Equal(decimal.RequireFromString("950.5")))
	assert.True(t, got.ServiceFee().Equal(decimal.NewFromInt(750)))
}

func TestSQLiteStorageReplaceCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewSQLite(ctx, ":memory:", calculator.DefaultCatalog())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.ReplaceCatalog(ctx, customCatalog(t)))

	got, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	_, ok := got.Lookup(calculator.Standard)
	assert.False(t, ok)
}

func TestSQLiteStorageEmptyCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewSQLite(ctx, ":memory:", calculator.Catalog{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.LoadCatalog(ctx)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestStorageImplementations(t *testing.T) {
	var _ Storage = (*MemoryStorage)(nil)
	var _ Storage = (*SQLiteStorage)(nil)
}
