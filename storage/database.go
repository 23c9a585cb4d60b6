package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// DatabaseType selects the SQL driver
type DatabaseType string

const (
	// MySQL
	MySQL DatabaseType = "mysql"
	// PostgreSQL
	PostgreSQL DatabaseType = "postgresql"
)

// DatabaseStorage is a StorageBackend that owns its schema
type DatabaseStorage interface {
	StorageBackend
	// InitDatabase creates the tables if missing
	InitDatabase() error
}

// NewDatabaseStorage opens the archive for the given database type
func NewDatabaseStorage(dbType string, dsn string) (DatabaseStorage, error) {
	switch DatabaseType(strings.ToLower(dbType)) {
	case MySQL:
		return NewMySQLStorage(dsn)
	case PostgreSQL, "postgres":
		return NewPostgreSQLStorage(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// insertResult writes one result and its sensor rows inside tx.
// insertCheck must insert the check_results row and return its id;
// placeholder renders the n-th (1-based) bind parameter.
func insertResult(tx *sql.Tx, res Result, insertCheck func(*sql.Tx, Result) (int64, error), placeholder func(n int) string) error {
	if res.Report == nil {
		return fmt.Errorf("result for %s has no report", res.Host)
	}

	checkID, err := insertCheck(tx, res)
	if err != nil {
		return fmt.Errorf("insert check result failed: %w", err)
	}

	rows := res.Rows()
	if len(rows) == 0 {
		return nil
	}

	const columns = 13
	valueStrings := make([]string, 0, len(rows))
	valueArgs := make([]interface{}, 0, len(rows)*columns)
	n := 1
	for _, row := range rows {
		ph := make([]string, columns)
		for i := range ph {
			ph[i] = placeholder(n)
			n++
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ", ")+")")
		valueArgs = append(valueArgs, checkID, row.Port, row.Slot, row.Name, row.Category, row.Health,
			row.Severity, row.Value, row.Unit, row.LowCritical, row.LowWarning, row.HighWarning, row.HighCritical)
	}

	query := fmt.Sprintf(`INSERT INTO sensor_readings (check_id, port, slot, name, category, health, severity,
		value, unit, low_critical, low_warning, high_warning, high_critical) VALUES %s`, strings.Join(valueStrings, ","))
	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("insert sensor readings failed: %w", err)
	}
	return nil
}

// storeInTx runs fn in a transaction, rolling back on error.
func storeInTx(db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}
