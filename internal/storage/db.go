package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/conluiben/excel-data-extraction/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  input TEXT NOT NULL,
  inputType TEXT NOT NULL,
  descriptionColumn TEXT NOT NULL,
  columnsJson TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  extractedCount INTEGER NOT NULL,
  degradedCount INTEGER NOT NULL,
  durationMs INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_rows (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  lineNo INTEGER NOT NULL,
  info TEXT NOT NULL,
  extracted TEXT NOT NULL,
  degraded INTEGER NOT NULL,
  valuesJson TEXT NOT NULL,
  UNIQUE(runId, lineNo),
  FOREIGN KEY(runId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS unit_values (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rowId INTEGER NOT NULL,
  property TEXT NOT NULL,
  rawText TEXT NOT NULL,
  unit TEXT NOT NULL,
  magnitude REAL,
  FOREIGN KEY(rowId) REFERENCES run_rows(id)
);
CREATE INDEX IF NOT EXISTS idx_unit_values_property ON unit_values(property);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveRun stores a run with its rows and unit values in one transaction.
func (d *DB) SaveRun(run internal.RunRecord, rows []internal.OutputRow) error {
	columnsJSON, err := json.Marshal(run.Columns)
	if err != nil {
		return err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO runs (id, input, inputType, descriptionColumn, columnsJson, rowCount, extractedCount, degradedCount, durationMs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.Input, run.InputType, run.DescriptionColumn, string(columnsJSON), run.Rows, run.Extracted, run.Degraded, run.DurationMs); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	rowStmt, err := tx.Prepare(`
INSERT INTO run_rows (runId, lineNo, info, extracted, degraded, valuesJson)
VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()

	unitStmt, err := tx.Prepare(`
INSERT INTO unit_values (rowId, property, rawText, unit, magnitude)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer unitStmt.Close()

	for _, row := range rows {
		valuesJSON, err := json.Marshal(row.Values)
		if err != nil {
			return err
		}
		res, err := rowStmt.Exec(run.ID, row.LineNo, row.Values["info"], row.Values["extracted"], row.Degraded, string(valuesJSON))
		if err != nil {
			return fmt.Errorf("insert row %d: %w", row.LineNo, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, u := range row.Units {
			if _, err := unitStmt.Exec(rowID, u.Property, u.Text, u.Unit, u.Magnitude); err != nil {
				return fmt.Errorf("insert unit value for row %d: %w", row.LineNo, err)
			}
		}
	}

	return tx.Commit()
}

func (d *DB) GetRun(id string) (*internal.RunRecord, error) {
	run, err := scanRun(d.conn.QueryRow(`
SELECT id, input, inputType, descriptionColumn, columnsJson, rowCount, extractedCount, degradedCount, durationMs, createdAt
FROM runs WHERE id = ?
`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, input, inputType, descriptionColumn, columnsJson, rowCount, extractedCount, degradedCount, durationMs, createdAt
FROM runs ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (internal.RunRecord, error) {
	var run internal.RunRecord
	var columnsJSON string
	if err := s.Scan(
		&run.ID, &run.Input, &run.InputType, &run.DescriptionColumn, &columnsJSON,
		&run.Rows, &run.Extracted, &run.Degraded, &run.DurationMs, &run.CreatedAt,
	); err != nil {
		return internal.RunRecord{}, err
	}
	_ = json.Unmarshal([]byte(columnsJSON), &run.Columns)
	return run, nil
}

// GetRunRows returns the rows of a run ordered by line, with their unit values.
func (d *DB) GetRunRows(runID string) ([]internal.OutputRow, error) {
	rows, err := d.conn.Query(`
SELECT id, lineNo, degraded, valuesJson
FROM run_rows WHERE runId = ? ORDER BY lineNo ASC
`, runID)
	if err != nil {
		return nil, err
	}

	var out []internal.OutputRow
	index := map[int64]int{}
	for rows.Next() {
		var (
			id         int64
			row        internal.OutputRow
			valuesJSON string
		)
		if err := rows.Scan(&id, &row.LineNo, &row.Degraded, &valuesJSON); err != nil {
			_ = rows.Close()
			return nil, err
		}
		_ = json.Unmarshal([]byte(valuesJSON), &row.Values)
		index[id] = len(out)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	units, err := d.conn.Query(`
SELECT u.rowId, u.property, u.rawText, u.unit, u.magnitude
FROM unit_values u
JOIN run_rows r ON r.id = u.rowId
WHERE r.runId = ?
ORDER BY u.id ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer units.Close()

	for units.Next() {
		var (
			rowID int64
			u     internal.UnitValue
		)
		if err := units.Scan(&rowID, &u.Property, &u.Text, &u.Unit, &u.Magnitude); err != nil {
			return nil, err
		}
		if i, ok := index[rowID]; ok {
			out[i].Units = append(out[i].Units, u)
		}
	}
	return out, units.Err()
}

// ListUnitValues returns every unit value of a run for one property.
func (d *DB) ListUnitValues(runID, property string) ([]internal.UnitValue, error) {
	rows, err := d.conn.Query(`
SELECT u.property, u.rawText, u.unit, u.magnitude
FROM unit_values u
JOIN run_rows r ON r.id = u.rowId
WHERE r.runId = ? AND u.property = ?
ORDER BY r.lineNo ASC, u.id ASC
`, runID, property)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.UnitValue
	for rows.Next() {
		var u internal.UnitValue
		if err := rows.Scan(&u.Property, &u.Text, &u.Unit, &u.Magnitude); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) MustRun(id string) (internal.RunRecord, error) {
	run, err := d.GetRun(id)
	if err != nil {
		return internal.RunRecord{}, err
	}
	if run == nil {
		return internal.RunRecord{}, fmt.Errorf("run not found: id=%s", id)
	}
	return *run, nil
}
