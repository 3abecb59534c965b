package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// DriverClass is a driver-neutral name for a database failure.
type DriverClass string

const (
	ClassNone                DriverClass = ""
	ClassUniqueViolation     DriverClass = "unique_violation"
	ClassForeignKeyViolation DriverClass = "foreign_key_violation"
	ClassCheckViolation      DriverClass = "check_violation"
	ClassNotNullViolation    DriverClass = "not_null_violation"
	ClassSerialization       DriverClass = "serialization_failure"
	ClassLocked              DriverClass = "locked"
	ClassOther               DriverClass = "other"
)

var pgClasses = map[string]DriverClass{
	"23505": ClassUniqueViolation,
	"23503": ClassForeignKeyViolation,
	"23514": ClassCheckViolation,
	"23502": ClassNotNullViolation,
	"40001": ClassSerialization,
	"40P01": ClassSerialization,
	"55P03": ClassLocked,
}

var sqliteClasses = map[sqlite3.ErrNoExtended]DriverClass{
	sqlite3.ErrConstraintUnique:     ClassUniqueViolation,
	sqlite3.ErrConstraintPrimaryKey: ClassUniqueViolation,
	sqlite3.ErrConstraintForeignKey: ClassForeignKeyViolation,
	sqlite3.ErrConstraintCheck:      ClassCheckViolation,
	sqlite3.ErrConstraintNotNull:    ClassNotNullViolation,
}

type ErrorDump struct {
	TopMessage string      `json:"top_message"`
	Code       Code        `json:"code,omitempty"`
	Chain      []string    `json:"chain,omitempty"`
	Class      DriverClass `json:"class,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	SQLiteCode     string `json:"sqlite_code,omitempty"`
	SQLiteExtended string `json:"sqlite_extended,omitempty"`
}

// Transient reports whether the driver failure may succeed on retry.
func (d ErrorDump) Transient() bool {
	return d.Class == ClassSerialization || d.Class == ClassLocked
}

// Dump flattens err into log fields: the wrap chain, the typed code and any
// driver detail from Postgres (pgx or lib/pq) or SQLite.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	switch {
	case d.fromPgx(err), d.fromPQ(err):
		d.Class = classify(pgClasses[d.PGCode])
	default:
		var liteErr sqlite3.Error
		if errors.As(err, &liteErr) {
			d.SQLiteCode = liteErr.Code.Error()
			d.SQLiteExtended = liteErr.ExtendedCode.Error()
			d.Class = classify(sqliteClasses[liteErr.ExtendedCode])
			if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
				d.Class = ClassLocked
			}
		}
	}
	return d
}

// ClassOf returns the driver class of err, or ClassNone for non-driver errors.
func ClassOf(err error) DriverClass {
	return Dump(err).Class
}

func (d *ErrorDump) fromPgx(err error) bool {
	var pgxErr *pgconn.PgError
	if !errors.As(err, &pgxErr) {
		return false
	}
	d.PGCode = pgxErr.Code
	d.PGConstraint = pgxErr.ConstraintName
	d.PGTable = pgxErr.TableName
	d.PGColumn = pgxErr.ColumnName
	d.PGDetail = pgxErr.Detail
	d.PGMessage = pgxErr.Message
	return true
}

func (d *ErrorDump) fromPQ(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	d.PGCode = string(pqErr.Code)
	d.PGConstraint = pqErr.Constraint
	d.PGTable = pqErr.Table
	d.PGColumn = pqErr.Column
	d.PGDetail = pqErr.Detail
	d.PGMessage = pqErr.Message
	return true
}

func classify(c DriverClass) DriverClass {
	if c == ClassNone {
		return ClassOther
	}
	return c
}
