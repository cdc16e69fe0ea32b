// Package store provides a SQLite-backed cache of parsed program tables.
// The cache is disposable: deleting it only costs a reparse.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/theirongolddev/edcost/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// Cache provides SQLite-backed caching of parsed CSV files.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	migrateMu.Lock()
	err = migrate(context.Background(), db)
	migrateMu.Unlock()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := sq.Select("file_path", "mtime_ns", "size_bytes").
		From("file_tracker").
		RunWith(c.db).
		Query()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached programs of one file and its tracking info.
func (c *Cache) SaveFile(path string, programs []model.Program, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = sq.Insert("file_tracker").
		Columns("file_path", "mtime_ns", "size_bytes", "parsed_at").
		Values(path, mtimeNs, sizeBytes, now).
		Suffix("ON CONFLICT(file_path) DO UPDATE SET mtime_ns = excluded.mtime_ns, size_bytes = excluded.size_bytes, parsed_at = excluded.parsed_at").
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("tracking %s: %w", path, err)
	}

	if _, err := sq.Delete("programs").Where(sq.Eq{"file_path": path}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("clearing %s: %w", path, err)
	}

	// Batch inserts stay under SQLite's bound-parameter limit.
	const batch = 500
	for start := 0; start < len(programs); start += batch {
		end := min(start+batch, len(programs))
		ins := sq.Insert("programs").Columns(
			"file_path", "row_num", "country", "city", "institution", "program", "level",
			"duration_years", "tuition_usd", "rent_usd", "visa_fee_usd", "insurance_usd",
			"living_cost_index", "exchange_rate",
		)
		for i := start; i < end; i++ {
			p := programs[i]
			ins = ins.Values(path, i, p.Country, p.City, p.Institution, p.Program, string(p.Level),
				p.DurationYears, p.TuitionUSD, p.RentUSD, p.VisaFeeUSD, p.InsuranceUSD,
				p.LivingCostIndex, p.ExchangeRate)
		}
		if _, err := ins.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("caching programs of %s: %w", path, err)
		}
	}

	return tx.Commit()
}

// LoadPrograms returns the cached programs of the given files, keyed by path,
// each in original row order.
func (c *Cache) LoadPrograms(paths []string) (map[string][]model.Program, error) {
	result := make(map[string][]model.Program, len(paths))
	if len(paths) == 0 {
		return result, nil
	}

	rows, err := sq.Select(
		"file_path", "country", "city", "institution", "program", "level",
		"duration_years", "tuition_usd", "rent_usd", "visa_fee_usd", "insurance_usd",
		"living_cost_index", "exchange_rate",
	).
		From("programs").
		Where(sq.Eq{"file_path": paths}).
		OrderBy("file_path", "row_num").
		RunWith(c.db).
		Query()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			path  string
			p     model.Program
			level string
			city  sql.NullString
			inst  sql.NullString
			prog  sql.NullString
		)
		if err := rows.Scan(&path, &p.Country, &city, &inst, &prog, &level,
			&p.DurationYears, &p.TuitionUSD, &p.RentUSD, &p.VisaFeeUSD, &p.InsuranceUSD,
			&p.LivingCostIndex, &p.ExchangeRate); err != nil {
			return nil, err
		}
		p.City, p.Institution, p.Program = city.String, inst.String, prog.String
		p.Level = model.Level(level)
		result[path] = append(result[path], p)
	}
	return result, rows.Err()
}

// Prune forgets every tracked file not listed in keep.
func (c *Cache) Prune(keep []string) (int64, error) {
	res, err := sq.Delete("file_tracker").
		Where(sq.NotEq{"file_path": keep}).
		RunWith(c.db).
		Exec()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
