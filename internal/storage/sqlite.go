package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/tuition-quoter/internal/calculator"
)

const serviceFeeKey = "service_fee"

// SQLiteStorage reads the package catalog from a SQLite database.
// Rates and fees are stored as decimal strings.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLite opens the database at path, creates the schema and seeds it from
// seed when the packages table is empty. Use ":memory:" for a throwaway database.
func NewSQLite(ctx context.Context, path string, seed calculator.Catalog) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := s.seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS packages (
		type TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		days INTEGER NOT NULL CHECK (days >= 1),
		rate TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_packages_position
		ON packages(position);

	CREATE TABLE IF NOT EXISTS catalog_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStorage) seed(ctx context.Context, catalog calculator.Catalog) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM packages`).Scan(&count); err != nil {
		return err
	}
	if count > 0 || catalog.Len() == 0 {
		return nil
	}
	return s.ReplaceCatalog(ctx, catalog)
}

// ReplaceCatalog overwrites the stored catalog in a single transaction.
// Running calculators are unaffected; the new table is picked up on the next LoadCatalog.
func (s *SQLiteStorage) ReplaceCatalog(ctx context.Context, catalog calculator.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM packages`); err != nil {
		return err
	}
	for i, p := range catalog.Packages() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO packages (type, name, days, rate, description, position) VALUES (?, ?, ?, ?, ?, ?)`,
			string(p.Type), p.Name, p.Days, p.Rate.String(), p.Description, i,
		)
		if err != nil {
			return fmt.Errorf("insert package %q: %w", p.Type, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO catalog_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		serviceFeeKey, catalog.ServiceFee().String(),
	)
	if err != nil {
		return fmt.Errorf("store service fee: %w", err)
	}
	return tx.Commit()
}

// LoadCatalog builds a validated catalog from the stored rows.
func (s *SQLiteStorage) LoadCatalog(ctx context.Context) (calculator.Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, name, days, rate, description FROM packages ORDER BY position`)
	if err != nil {
		return calculator.Catalog{}, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	var packages []calculator.PackageInfo
	for rows.Next() {
		var (
			p       calculator.PackageInfo
			pkgType string
			rate    string
		)
		if err := rows.Scan(&pkgType, &p.Name, &p.Days, &rate, &p.Description); err != nil {
			return calculator.Catalog{}, fmt.Errorf("scan package: %w", err)
		}
		p.Type = calculator.PackageType(pkgType)
		p.Rate, err = decimal.NewFromString(rate)
		if err != nil {
			return calculator.Catalog{}, fmt.Errorf("decode rate of %q: %w", pkgType, err)
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return calculator.Catalog{}, fmt.Errorf("iterate packages: %w", err)
	}
	if len(packages) == 0 {
		return calculator.Catalog{}, ErrEmptyCatalog
	}

	fee := calculator.DefaultServiceFee
	var rawFee string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM catalog_settings WHERE key = ?`, serviceFeeKey).Scan(&rawFee)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return calculator.Catalog{}, fmt.Errorf("query service fee: %w", err)
	default:
		fee, err = decimal.NewFromString(rawFee)
		if err != nil {
			return calculator.Catalog{}, fmt.Errorf("decode service fee: %w", err)
		}
	}

	return calculator.NewCatalog(fee, packages...)
}
