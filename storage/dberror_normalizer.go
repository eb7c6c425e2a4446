package storage

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// normalizeDBError maps driver errors to repository errors by MySQL error number; SQLite constraint
// violations are reported under the MySQL duplicate key number.
func normalizeDBError(driverErr error, mappedError map[uint16]error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(driverErr, &mysqlErr) {
		return lookup(mysqlErr.Number, mappedError, driverErr)
	}
	var sqliteErr sqlite3.Error
	if errors.As(driverErr, &sqliteErr) && (sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return lookup(mysqlDuplicateKeyErrorNumber, mappedError, driverErr)
	}
	return driverErr
}

func lookup(number uint16, mappedError map[uint16]error, defaultErr error) error {
	if mappedErr, ok := mappedError[number]; ok {
		return mappedErr
	}
	return defaultErr
}
