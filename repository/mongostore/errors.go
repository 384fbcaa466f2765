package mongostore

import (
	"errors"
	"net"

	"go-market-backend/apperr"
	"go-market-backend/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes returned on a failed handshake.
const (
	codeAuthenticationFailed = 18
	codeUnauthorized         = 13
)

func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	case mongo.IsTimeout(err):
		return apperr.Storage(repository.MsgTimeout, err)
	}

	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeAuthenticationFailed) || se.HasErrorCode(codeUnauthorized)) {
		return apperr.Storage(repository.MsgAuthFailed, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apperr.Storage(repository.MsgHostNotFound, err)
	}
	return repository.StorageError(err)
}
