package usecase

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/dispatch/domain"
)

// IsInfrastructureError reports failures caused by an unreachable store rather
// than by the request itself. Only these are eligible for the offline buffer,
// so anything unrecognised counts as a request error.
func IsInfrastructureError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Code == domain.ErrCodeUnavailable
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isOutageState(pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// isOutageState reports SQLSTATEs raised by the server being down, overloaded
// or shutting down: classes 08, 53, 57 and serialization failures.
func isOutageState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", "53", "57":
		return true
	}
	return code == "40001" || code == "40P01"
}
