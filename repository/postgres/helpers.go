package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/dispatch/domain"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func marshalJSON(data interface{}) []byte {
	if data == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil || string(b) == "null" {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

// mapError turns integrity (class 23) and data (class 22) errors into domain
// errors so they are answered as request errors instead of being buffered.
// Everything else, connection failures included, is returned unchanged.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) || len(pgErr.Code) < 2 {
		return err
	}
	switch {
	case pgErr.Code == "23505":
		return domain.WrapError(domain.ErrCodeConflict, "record already exists", err)
	case pgErr.Code == "23503":
		return domain.WrapError(domain.ErrCodeInvalid, "referenced record does not exist", err)
	case pgErr.Code[:2] == "23":
		return domain.WrapError(domain.ErrCodeInvalid, "constraint violated", err)
	case pgErr.Code[:2] == "22":
		return domain.WrapError(domain.ErrCodeInvalid, "invalid value", err)
	}
	return err
}
