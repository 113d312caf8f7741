// Package source reads the most recent rows of a station table.
//
// Every engine runs the same statement, SELECT * FROM <table> ORDER BY 1 DESC
// LIMIT n, so index 0 of the result is always the newest row.
package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Row maps a column name (the station's field number, e.g. "120") to its value.
type Row map[string]any

// Fetcher retrieves rows from the station database.
type Fetcher interface {
	// Fetch returns up to limit rows of table, most recent first.
	Fetch(ctx context.Context, table string, limit int) ([]Row, error)
	Ping(ctx context.Context) error
	Close() error
}

type Kind int

const (
	ConnectionFailed Kind = iota + 1
	QueryFailed
)

func (k Kind) String() string {
	switch k {
	case ConnectionFailed:
		return "connection failed"
	case QueryFailed:
		return "query failed"
	default:
		return "unknown"
	}
}

var (
	ErrConnectionFailed = errors.New("data source connection failed")
	ErrQueryFailed      = errors.New("data source query failed")
)

// FetchError describes why a table could not be read.
type FetchError struct {
	Kind  Kind
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Table, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match on the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrConnectionFailed:
		return e.Kind == ConnectionFailed
	case ErrQueryFailed:
		return e.Kind == QueryFailed
	}
	return false
}

// IsConnectionFailure reports whether err means the data source itself is unreachable.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name can be used as a table in Fetch.
func ValidTableName(name string) bool {
	return tableNameRe.MatchString(name)
}

// dialect holds the two engine-specific bits of the latest-rows statement.
type dialect struct {
	quote       func(string) string
	placeholder string
}

var (
	mysqlDialect = dialect{
		quote:       func(s string) string { return "`" + s + "`" },
		placeholder: "?",
	}
	sqliteDialect = dialect{
		quote:       func(s string) string { return `"` + s + `"` },
		placeholder: "?",
	}
	postgresDialect = dialect{
		quote:       func(s string) string { return `"` + s + `"` },
		placeholder: "$1",
	}
)

// latestQuery builds the statement for table. The table name is interpolated,
// so it must be a plain identifier; limit is always bound as a parameter.
func (d dialect) latestQuery(table string, limit int) (string, error) {
	if !ValidTableName(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	if limit < 1 {
		return "", fmt.Errorf("row limit must be >= 1, got %d", limit)
	}
	return "SELECT * FROM " + d.quote(table) + " ORDER BY 1 DESC LIMIT " + d.placeholder, nil
}

// normalize turns driver values into the small set a Row carries:
// int64, float64, string, bool, time.Time or nil.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int64, float64, string, bool, time.Time:
		return t
	default:
		return fmt.Sprint(t)
	}
}
