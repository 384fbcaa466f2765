package repository

import (
	"context"
	"errors"
	"strings"

	"go-market-backend/apperr"
)

// Storage messages shown to clients when the backend cannot be reached.
const (
	MsgHostNotFound      = "Database server not found. Check your connection string."
	MsgAuthFailed        = "Database authentication failed. Check your credentials."
	MsgTimeout           = "Database connection timeout. Check your network connection."
	MsgConnectionRefused = "Database connection refused. Is the server running?"
	MsgUnavailable       = "Database connection failed"
)

// ClassifyMessage picks a storage message by inspecting an error string.
// Backends call it only after their typed checks found nothing.
func ClassifyMessage(msg string) (string, bool) {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "enotfound"), strings.Contains(m, "no such host"):
		return MsgHostNotFound, true
	case strings.Contains(m, "authentication failed"), strings.Contains(m, "auth error"), strings.Contains(m, "password authentication"):
		return MsgAuthFailed, true
	case strings.Contains(m, "timeout"), strings.Contains(m, "timed out"), strings.Contains(m, "deadline exceeded"):
		return MsgTimeout, true
	case strings.Contains(m, "econnrefused"), strings.Contains(m, "connection refused"):
		return MsgConnectionRefused, true
	}
	return "", false
}

// StorageError wraps a driver error for the service layer. Timeouts and
// errors ClassifyMessage recognises become storage failures (503); anything
// else, such as a constraint or decode error, is unexpected (500).
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Storage(MsgTimeout, err)
	}
	if msg, ok := ClassifyMessage(err.Error()); ok {
		return apperr.Storage(msg, err)
	}
	return apperr.Wrap(apperr.KindUnexpected, "storage", err)
}
