package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// codePattern is the sole injection-prevention boundary for schema names.
// Schema identifiers end up interpolated into DDL/DML that cannot go through
// bind parameters, so everything must pass this gate first.
var codePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,29}$`)

// reservedSchemas can never be targeted by programme routing.
var reservedSchemas = map[string]bool{
	"public":             true,
	"information_schema": true,
}

// Resolve maps a programme code to its physical schema name. The mapping is
// deterministic and idempotent: the same code always yields the same schema
// name, and resolving an already-resolved name yields itself.
func Resolve(programmeCode string) (string, error) {
	if !codePattern.MatchString(programmeCode) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, programmeCode)
	}
	name := strings.ToLower(programmeCode)
	if reservedSchemas[name] || strings.HasPrefix(name, "pg_") {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidIdentifier, programmeCode)
	}
	return name, nil
}

// ValidTableName reports whether name is safe to interpolate as a table
// identifier. Used by the cleanup subsystem, which executes admin-authored
// delete rules against named tables.
func ValidTableName(name string) bool {
	return codePattern.MatchString(name) && !strings.HasPrefix(strings.ToLower(name), "pg_")
}
