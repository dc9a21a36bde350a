package http

import (
	"github.com/brendan.keane/lurl/internal/errors"
)

// ErrorKind classifies errors returned by this package.
type ErrorKind = errors.ErrorType

// Error kinds returned by Fetch and the invokers.
const (
	KindConfiguration ErrorKind = errors.ErrorTypeConfig
	KindTransport     ErrorKind = errors.ErrorTypeTransport
	KindUpstream      ErrorKind = errors.ErrorTypeUpstream
	KindDecoding      ErrorKind = errors.ErrorTypeDecoding
	KindAuth          ErrorKind = errors.ErrorTypeAuth
)

// KindOf returns the kind of err, or "internal" for foreign errors.
func KindOf(err error) ErrorKind {
	return errors.GetType(err)
}
