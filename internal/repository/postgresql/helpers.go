package postgresql

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation on the named constraint or index.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}

// toJSONB encodes v for a JSONB column; nil slices are stored as empty arrays.
func toJSONB(v any) ([]byte, error) {
	switch s := v.(type) {
	case []string:
		if s == nil {
			return []byte("[]"), nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb: %w", err)
	}
	return b, nil
}

// fromJSONB decodes a JSONB column, leaving dst untouched when the column is NULL.
func fromJSONB(data []byte, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode jsonb: %w", err)
	}
	return nil
}
