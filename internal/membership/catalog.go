package membership

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS micrographs (
    filename TEXT PRIMARY KEY,
    filelist_group INTEGER NOT NULL,
    foilhole INTEGER NOT NULL,
    shift_x INTEGER NOT NULL,
    shift_y INTEGER NOT NULL,
    date INTEGER NOT NULL,
    time TEXT NOT NULL,
    mtf_file TEXT,
    orig_angpix REAL,
    optics_group INTEGER NOT NULL,
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_micrographs_group ON micrographs(optics_group);
`

// Catalog stores a membership table in a SQLite database, as an alternative
// to the CSV file.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens or creates the SQLite database at path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Save replaces the stored table with t. Filenames must be unique.
func (c *Catalog) Save(t Table) error {
	for name, pos := range t.Index() {
		if len(pos) > 1 {
			return fault.Consistency("micrograph %s appears %d times", name, len(pos))
		}
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM micrographs"); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO micrographs
		(filename, filelist_group, foilhole, shift_x, shift_y, date, time, mtf_file, orig_angpix, optics_group, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range t.Rows {
		var mtf, angpix any
		if t.HasMTF {
			mtf, angpix = r.MTFFile, r.OrigAngpix
		}
		if _, err := stmt.Exec(r.Filename, r.FilelistGroup, r.Foilhole, r.ShiftX, r.ShiftY,
			r.Date, r.Time, mtf, angpix, r.OpticsGroup, i); err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.Filename, err)
		}
	}
	return tx.Commit()
}

// Load reads the stored table back in its saved order. HasMTF is set when
// every row carries MTF fields.
func (c *Catalog) Load() (Table, error) {
	rows, err := c.db.Query(`SELECT filename, filelist_group, foilhole, shift_x, shift_y,
		date, time, mtf_file, orig_angpix, optics_group FROM micrographs ORDER BY position`)
	if err != nil {
		return Table{}, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	t := Table{HasMTF: true}
	for rows.Next() {
		var (
			r      Row
			mtf    sql.NullString
			angpix sql.NullFloat64
		)
		if err := rows.Scan(&r.Filename, &r.FilelistGroup, &r.Foilhole, &r.ShiftX, &r.ShiftY,
			&r.Date, &r.Time, &mtf, &angpix, &r.OpticsGroup); err != nil {
			return Table{}, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if mtf.Valid && angpix.Valid {
			r.MTFFile, r.OrigAngpix = mtf.String, angpix.Float64
		} else {
			t.HasMTF = false
		}
		t.Rows = append(t.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return Table{}, err
	}
	if len(t.Rows) == 0 {
		t.HasMTF = false
	}
	return t, nil
}

func isCatalogPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// ReadFile loads a membership table from a CSV file or, judged by the
// extension, a SQLite catalog.
func ReadFile(path string) (Table, error) {
	if !isCatalogPath(path) {
		return ReadCSVFile(path)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Table{}, fault.Format("%s does not exist", path)
	}
	c, err := OpenCatalog(path)
	if err != nil {
		return Table{}, err
	}
	defer c.Close()
	return c.Load()
}

// WriteFile stores t as CSV or, judged by the extension, a SQLite catalog.
func WriteFile(path string, t Table) error {
	if !isCatalogPath(path) {
		return WriteCSVFile(path, t)
	}
	c, err := OpenCatalog(path)
	if err != nil {
		return err
	}
	if err := c.Save(t); err != nil {
		c.Close()
		return err
	}
	return c.Close()
}
