package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// sqliteDriver is go-sqlite3 with LOWER replaced by a Unicode-aware
// version, so case-insensitive matching agrees with Postgres.
const sqliteDriver = "sqlite3_taskboard"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", unicodeLower, true)
		},
	})
}

func unicodeLower(value any) any {
	switch v := value.(type) {
	case string:
		return strings.ToLower(v)
	case []byte:
		if v == nil {
			return nil
		}
		return strings.ToLower(string(v))
	default:
		return value
	}
}

func (d Dialect) driverName() string {
	if d == DialectSQLite {
		return sqliteDriver
	}
	return "pgx"
}

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a uniqueness failure and, when it
// is, the offending column as far as the driver names it.
func (d Dialect) uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	switch d {
	case DialectPostgres:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return pgErr.ConstraintName + " " + pgErr.Detail, true
		}
	case DialectSQLite:
		var liteErr sqlite3.Error
		if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return liteErr.Error(), true
		}
	}
	return "", false
}

func violatedField(description string, candidates ...string) string {
	lowered := strings.ToLower(description)
	for _, candidate := range candidates {
		if strings.Contains(lowered, candidate) {
			return candidate
		}
	}
	return ""
}
