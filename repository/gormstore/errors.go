package gormstore

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"go-market-backend/apperr"
	"go-market-backend/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes we care about.
const (
	pgUniqueViolation        = "23505"
	pgInvalidPassword        = "28P01"
	pgInvalidAuthorization   = "28000"
	pgCannotConnectNow       = "57P03"
	pgTooManyConnections     = "53300"
	sqliteUniqueConstraint   = "unique constraint failed"
	sqlitePrimaryKeyConflict = "constraint failed: primary key"
)

// translateError maps driver errors onto repository sentinels and storage
// failures. Typed checks run first; message inspection is the fallback.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return repository.ErrDuplicate
		case pgInvalidPassword, pgInvalidAuthorization:
			return apperr.Storage(repository.MsgAuthFailed, err)
		case pgCannotConnectNow, pgTooManyConnections:
			return apperr.Storage(repository.MsgUnavailable, err)
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.Storage(repository.MsgHostNotFound, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return apperr.Storage(repository.MsgConnectionRefused, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Storage(repository.MsgTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, sqliteUniqueConstraint) || strings.Contains(msg, sqlitePrimaryKeyConflict) {
		return repository.ErrDuplicate
	}
	return repository.StorageError(err)
}
