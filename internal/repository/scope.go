package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/glider-ops-api/internal/models"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

// stationScopeCondition renders the WHERE fragment selecting the stations of a season.
// alias prefixes the stations table columns; args is extended with bound values.
func stationScopeCondition(alias string, scope models.SeasonScope, args []interface{}) (string, []interface{}) {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	if scope.Year == nil {
		return fmt.Sprintf("%s IS NULL AND %s = FALSE", col("field_season_year"), col("is_archived")), args
	}
	args = append(args, *scope.Year)
	placeholder := fmt.Sprintf("$%d", len(args))
	if !scope.IncludeUnassigned {
		return fmt.Sprintf("%s = %s", col("field_season_year"), placeholder), args
	}
	return fmt.Sprintf("(%s = %s OR (%s IS NULL AND %s = FALSE))",
		col("field_season_year"), placeholder, col("field_season_year"), col("is_archived")), args
}

// prefixed qualifies every column of a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
