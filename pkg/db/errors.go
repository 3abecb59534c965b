package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint failure. On
// Postgres a non-empty constraintName must match; SQLite names the columns
// instead, so any SQLite unique failure matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	dump := pkgerrors.Dump(err)
	switch {
	case dump.Class == pkgerrors.ClassUniqueViolation && dump.PGCode != "":
		return constraintName == "" || dump.PGConstraint == constraintName
	case dump.Class == pkgerrors.ClassUniqueViolation:
		return true
	case dump.Class != pkgerrors.ClassNone:
		return false
	}

	// Untyped driver errors only carry the message.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}
